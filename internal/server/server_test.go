package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type harness struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	fx     *testutil.Fixtures
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		Port:                 "0",
		Env:                  "test",
		DBDriver:             "sqlite",
		CacheBackend:         "memory",
		CachePrefix:          "quill:",
		IndexCacheTTLSeconds: 20,
		JWTSecret:            testSecret,
		AllowedOrigins:       "http://localhost:3000",
	}
	db := testutil.NewSQLiteDB(t)
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return &harness{server: s, app: s.App(), db: db, fx: testutil.NewFixtures(t, db)}
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, user *models.User) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = h.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(fiber.HeaderXRequestID))
	assert.NoError(t, err, "request ids are uuids")
}

func TestIndexContextKeys(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	h.fx.Posts(leo, nil, 13)

	status, body := h.do(t, http.MethodGet, "/?page=2", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["posts"], 13)

	page := body["page_obj"].(map[string]interface{})
	assert.Len(t, page["object_list"], 3)
	assert.Equal(t, float64(2), page["number"])
	assert.Equal(t, true, page["has_previous"])
	assert.Equal(t, false, page["has_next"])
}

func TestGroupPosts(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	cats := h.fx.Group("cats")
	h.fx.Post(leo, cats, "meow")
	h.fx.Post(leo, nil, "no group")

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedPosts  int
	}{
		{"known group", "/group/cats", http.StatusOK, 1},
		{"non-numeric page", "/group/cats?page=abc", http.StatusOK, 1},
		{"unknown group", "/group/dogs", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := h.do(t, http.MethodGet, tt.path, nil, nil)
			require.Equal(t, tt.expectedStatus, status)
			if status == http.StatusOK {
				assert.Len(t, body["posts"], tt.expectedPosts)
				assert.Equal(t, "cats", body["group"].(map[string]interface{})["slug"])
			} else {
				assert.Equal(t, models.CodeNotFound, body["code"])
			}
		})
	}
}

func TestProfileFollowState(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	anna := h.fx.User("anna")
	h.fx.Posts(leo, nil, 2)

	status, body := h.do(t, http.MethodGet, "/profile/leo", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["following"])
	assert.Equal(t, float64(2), body["posts_sum"])
	assert.Len(t, body["post_list"], 2)
	assert.Equal(t, "leo", body["author_name"])

	status, body = h.do(t, http.MethodPost, "/profile/leo/follow", nil, anna)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["following"])

	status, body = h.do(t, http.MethodPost, "/profile/leo/follow", nil, anna)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["followers_count"], "second follow must not add an edge")

	status, body = h.do(t, http.MethodGet, "/profile/leo", nil, anna)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["following"])

	status, body = h.do(t, http.MethodGet, "/follow", nil, anna)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["page_obj"].(map[string]interface{})["object_list"], 2)

	status, body = h.do(t, http.MethodPost, "/profile/leo/unfollow", nil, anna)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["following"])

	status, _ = h.do(t, http.MethodGet, "/profile/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLoginRequiredRoutes(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	post := h.fx.Post(leo, nil, "hello")
	postPath := "/posts/" + strconv.FormatUint(uint64(post.ID), 10)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/follow"},
		{http.MethodPost, "/create"},
		{http.MethodGet, postPath + "/edit"},
		{http.MethodPost, postPath + "/comment"},
		{http.MethodPost, "/profile/leo/follow"},
		{http.MethodPost, "/profile/leo/unfollow"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, body := h.do(t, tt.method, tt.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, models.CodeUnauthorized, body["code"])
			assert.Contains(t, body["login_url"], "/auth/login/?next=")
		})
	}
}

func TestPostCreate(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	cats := h.fx.Group("cats")

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedCode   string
	}{
		{"success", map[string]interface{}{"text": "Новый пост", "group": cats.ID}, http.StatusCreated, ""},
		{"blank text", map[string]interface{}{"text": "   "}, http.StatusBadRequest, models.CodeValidation},
		{"unknown group", map[string]interface{}{"text": "hi", "group": 999}, http.StatusConflict, models.CodeConstraintViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := h.do(t, http.MethodPost, "/create", tt.body, leo)
			require.Equal(t, tt.expectedStatus, status)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["code"])
			} else {
				assert.Equal(t, "Новый пост", body["text"])
				assert.Equal(t, float64(leo.ID), body["author_id"])
			}
		})
	}

	var count int64
	require.NoError(t, h.db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	status, body := h.do(t, http.MethodPost, "/create", map[string]interface{}{"text": ""}, leo)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "text")
}

func TestPostEditAuthorOnly(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	anna := h.fx.User("anna")
	post := h.fx.Post(leo, nil, "original")
	path := "/posts/" + strconv.FormatUint(uint64(post.ID), 10) + "/edit"

	status, _ := h.do(t, http.MethodGet, path, nil, anna)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = h.do(t, http.MethodPost, path, map[string]interface{}{"text": "hijacked"}, anna)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := h.do(t, http.MethodGet, path, nil, leo)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_edit"])

	status, body = h.do(t, http.MethodPost, path, map[string]interface{}{"text": "edited"}, leo)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", body["text"])

	var stored models.Post
	require.NoError(t, h.db.First(&stored, post.ID).Error)
	assert.True(t, post.CreatedAt.Equal(stored.CreatedAt))
}

func TestPostDetailAndComment(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	anna := h.fx.User("anna")
	post := h.fx.Post(leo, nil, "discuss")
	base := "/posts/" + strconv.FormatUint(uint64(post.ID), 10)

	status, _ := h.do(t, http.MethodPost, base+"/comment", map[string]interface{}{"text": "nice"}, anna)
	require.Equal(t, http.StatusCreated, status)

	status, body := h.do(t, http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["comments"], 1)
	assert.Equal(t, float64(1), body["post_count"])
	assert.Equal(t, base+"/comment", body["form"].(map[string]interface{})["action"])

	status, _ = h.do(t, http.MethodGet, "/posts/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = h.do(t, http.MethodGet, "/posts/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIndexCacheServesStalePage(t *testing.T) {
	h := newHarness(t)
	leo := h.fx.User("leo")
	h.fx.Post(leo, nil, "first")

	_, body := h.do(t, http.MethodGet, "/", nil, nil)
	require.Len(t, body["posts"], 1)

	status, _ := h.do(t, http.MethodPost, "/create", map[string]interface{}{"text": "second"}, leo)
	require.Equal(t, http.StatusCreated, status)

	_, body = h.do(t, http.MethodGet, "/", nil, nil)
	assert.Len(t, body["posts"], 1)

	require.NoError(t, h.server.IndexCache().Clear(context.Background()))
	_, body = h.do(t, http.MethodGet, "/", nil, nil)
	assert.Len(t, body["posts"], 2)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	status, body := h.do(t, http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, body["code"])
}

func TestServerWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		Env:                  "test",
		CacheBackend:         "redis",
		CachePrefix:          "quill:",
		IndexCacheTTLSeconds: 20,
		JWTSecret:            testSecret,
		AllowedOrigins:       "http://localhost:3000",
	}
	db := testutil.NewSQLiteDB(t)
	s, err := NewServerWithDeps(cfg, db, client)
	require.NoError(t, err)
	h := &harness{server: s, app: s.App(), db: db, fx: testutil.NewFixtures(t, db)}
	h.fx.Post(h.fx.User("leo"), nil, "cached in redis")

	status, _ := h.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, mr.Exists("quill:cache:feed:index"))
	ttl := mr.TTL("quill:cache:feed:index")
	assert.True(t, ttl > 0 && ttl <= 20*time.Second, "unexpected ttl %s", ttl)

	status, body := h.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["checks"].(map[string]interface{})["cache"])

	mr.Close()
	status, _ = h.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

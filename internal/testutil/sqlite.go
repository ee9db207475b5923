// Package testutil provides shared fixtures for tests that need a real
// database.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"quill/internal/database"
	"quill/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Uint64

// NewSQLiteDB opens a private in-memory database with foreign keys enforced,
// driver errors translated and the schema migrated.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Fixtures creates rows with predictable timestamps. Each post is one
// minute newer than the previous one.
type Fixtures struct {
	t     testing.TB
	db    *gorm.DB
	clock time.Time
}

// NewFixtures returns a Fixtures writing to db.
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{
		t:     t,
		db:    db,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *Fixtures) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

// User creates a user with the given username.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	u := &models.User{Username: username}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

// Group creates a group whose title is derived from slug.
func (f *Fixtures) Group(slug string) *models.Group {
	f.t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	require.NoError(f.t, f.db.Create(g).Error)
	return g
}

// Post creates a post by author, optionally in group.
func (f *Fixtures) Post(author *models.User, group *models.Group, text string) *models.Post {
	f.t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID, CreatedAt: f.tick()}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(f.t, f.db.Omit("Author", "Group").Create(p).Error)
	return p
}

// Posts creates n posts by author.
func (f *Fixtures) Posts(author *models.User, group *models.Group, n int) []*models.Post {
	f.t.Helper()
	out := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Post(author, group, fmt.Sprintf("post %d by %s", i+1, author.Username)))
	}
	return out
}

// Comment creates a comment by author on post.
func (f *Fixtures) Comment(author *models.User, post *models.Post, text string) *models.Comment {
	f.t.Helper()
	c := &models.Comment{PostID: &post.ID, AuthorID: author.ID, Text: text, CreatedAt: f.tick()}
	require.NoError(f.t, f.db.Omit("Author", "Post").Create(c).Error)
	return c
}

// Follow makes follower follow author.
func (f *Fixtures) Follow(follower, author *models.User) {
	f.t.Helper()
	require.NoError(f.t, f.db.Omit("User", "Author").Create(&models.Follow{UserID: follower.ID, AuthorID: author.ID}).Error)
}

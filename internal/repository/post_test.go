package repository

import (
	"context"
	"regexp"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Text: "Test post", AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Create_ForeignKeyViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	groupID := uint(99)
	post := &models.Post{Text: "Test post", AuthorID: 1, GroupID: &groupID}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "insert or update on table \"posts\" violates foreign key constraint"})
	mock.ExpectRollback()

	err := repo.Create(ctx, post)
	assert.True(t, models.IsConstraintViolation(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListByScope_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE posts.author_id IN (SELECT follows.author_id FROM follows WHERE follows.user_id = $1) ORDER BY posts.created_at DESC,posts.author_id ASC,posts.id DESC`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "author_id"}))

	posts, err := repo.ListByScope(ctx, FollowingScope(7))
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListByScope(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := fx.User("leo")
	ann := fx.User("ann")
	cats := fx.Group("cats")

	p1 := fx.Post(leo, cats, "first")
	p2 := fx.Post(ann, nil, "second")
	p3 := fx.Post(leo, nil, "third")
	fx.Follow(ann, leo)

	tests := []struct {
		name  string
		scope Scope
		want  []uint
	}{
		{"global newest first", GlobalScope(), []uint{p3.ID, p2.ID, p1.ID}},
		{"group", GroupScope(cats.ID), []uint{p1.ID}},
		{"author", AuthorScope(leo.ID), []uint{p3.ID, p1.ID}},
		{"following", FollowingScope(ann.ID), []uint{p3.ID, p1.ID}},
		{"following nobody", FollowingScope(leo.ID), []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.ListByScope(ctx, tt.scope)
			require.NoError(t, err)
			ids := make([]uint, 0, len(posts))
			for _, p := range posts {
				ids = append(ids, p.ID)
				assert.NotEmpty(t, p.Author.Username, "author is preloaded")
			}
			assert.Equal(t, tt.want, ids)

			n, err := repo.CountByScope(ctx, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), n)
		})
	}

	posts, err := repo.ListByScope(ctx, GroupScope(cats.ID))
	require.NoError(t, err)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "cats", posts[0].Group.Slug)
}

func TestPostRepository_ListPageByScope(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := fx.User("leo")
	ann := fx.User("ann")
	fx.Follow(ann, leo)
	created := fx.Posts(leo, nil, 13)
	fx.Post(ann, nil, "not followed")

	all, err := repo.ListByScope(ctx, FollowingScope(ann.ID))
	require.NoError(t, err)
	require.Len(t, all, len(created))

	page, err := repo.ListPageByScope(ctx, FollowingScope(ann.ID), 10, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	for i, p := range page {
		assert.Equal(t, all[10+i].ID, p.ID)
		assert.Equal(t, "leo", p.Author.Username, "author is preloaded")
	}

	page, err = repo.ListPageByScope(ctx, FollowingScope(ann.ID), 10, 20)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestPostRepository_SameTimestampOrdersByAuthor(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := fx.User("a")
	b := fx.User("b")
	pb := fx.Post(b, nil, "by b")
	pa := fx.Post(a, nil, "by a")
	require.NoError(t, db.Model(&models.Post{}).Where("id IN ?", []uint{pa.ID, pb.ID}).
		Update("created_at", pa.CreatedAt).Error)

	posts, err := repo.ListByScope(ctx, GlobalScope())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, a.ID, posts[0].AuthorID)
	assert.Equal(t, b.ID, posts[1].AuthorID)
}

func TestPostRepository_UpdateKeepsPubDate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := fx.User("leo")
	cats := fx.Group("cats")
	p := fx.Post(leo, cats, "before")

	require.NoError(t, repo.Update(ctx, &models.Post{ID: p.ID, Text: "after"}))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Text)
	assert.Nil(t, got.GroupID)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	err = repo.Update(ctx, &models.Post{ID: 999, Text: "x"})
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_DeleteCascadesComments(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := fx.User("leo")
	p := fx.Post(leo, nil, "post")
	fx.Comment(leo, p, "one")
	fx.Comment(leo, p, "two")

	require.NoError(t, repo.Delete(ctx, p.ID))

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)

	_, err := repo.GetByID(ctx, p.ID)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, p.ID)))
}

func TestPostRepository_CreateWithUnknownGroup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewPostRepository(db)

	leo := fx.User("leo")
	missing := uint(404)
	err := repo.Create(context.Background(), &models.Post{Text: "x", AuthorID: leo.ID, GroupID: &missing})
	assert.True(t, models.IsConstraintViolation(err), "got %v", err)
}

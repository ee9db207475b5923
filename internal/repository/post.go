// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// Update writes text, group and image. The publication date never changes.
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post and its comments.
	Delete(ctx context.Context, id uint) error
	// ListByScope returns every post in scope in feed order with author and
	// group loaded.
	ListByScope(ctx context.Context, scope Scope) ([]*models.Post, error)
	// ListPageByScope returns at most limit posts in scope starting at offset,
	// in the same order and with the same preloads as ListByScope.
	ListPageByScope(ctx context.Context, scope Scope, limit, offset int) ([]*models.Post, error)
	CountByScope(ctx context.Context, scope Scope) (int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "Post", post.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"text":     post.Text,
		"group_id": post.GroupID,
		"image":    post.Image,
	})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return translateError(res.Error, "Post", post.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.LogError(ctx, err, "delete")
		}
		return translateError(err, "Post", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

func (r *postRepository) ListByScope(ctx context.Context, scope Scope) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_scope", "posts")()
	ctx, span := observability.GetTraceLayer().TraceServiceToRepository(ctx, "PostRepository", "ListByScope")
	defer span.End()

	q, err := applyScope(r.db.WithContext(ctx).Model(&models.Post{}), scope)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	posts := make([]*models.Post, 0)
	if err := orderPosts(q).Preload("Author").Preload("Group").Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "list_by_scope")
		observability.RecordErrorInContext(ctx, err)
		return nil, translateError(err, "Post", scope.String())
	}
	r.log.LogRead(ctx, map[string]interface{}{"scope": scope.String(), "count": len(posts)})
	return posts, nil
}

func (r *postRepository) ListPageByScope(ctx context.Context, scope Scope, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_page_by_scope", "posts")()

	q, err := applyScope(r.db.WithContext(ctx).Model(&models.Post{}), scope)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	posts := make([]*models.Post, 0, limit)
	if err := orderPosts(q).Limit(limit).Offset(offset).Preload("Author").Preload("Group").Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "list_page_by_scope")
		return nil, translateError(err, "Post", scope.String())
	}
	return posts, nil
}

func (r *postRepository) CountByScope(ctx context.Context, scope Scope) (int64, error) {
	q, err := applyScope(r.db.WithContext(ctx).Model(&models.Post{}), scope)
	if err != nil {
		return 0, models.NewValidationError(err.Error())
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, translateError(err, "Post", scope.String())
	}
	return n, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.CountByScope(ctx, AuthorScope(authorID))
}

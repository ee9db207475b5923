package repository

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow graph operations
type FollowRepository interface {
	// Create inserts the edge and fails with a constraint violation if it
	// already exists.
	Create(ctx context.Context, follow *models.Follow) error
	// CreateIfAbsent inserts the edge unless it exists and reports whether a
	// row was written. Concurrent callers never see a duplicate-key error.
	CreateIfAbsent(ctx context.Context, followerID, authorID uint) (bool, error)
	// DeleteByAuthorUsername removes the follower's edge to the named author
	// and returns the number of rows removed.
	DeleteByAuthorUsername(ctx context.Context, followerID uint, username string) (int64, error)
	Exists(ctx context.Context, followerID, authorID uint) (bool, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, followerID uint) (int64, error)
}

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error; err != nil {
		return translateError(err, "Follow", follow.AuthorID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"user_id": follow.UserID, "author_id": follow.AuthorID})
	return nil
}

func (r *followRepository) CreateIfAbsent(ctx context.Context, followerID, authorID uint) (bool, error) {
	follow := models.Follow{UserID: followerID, AuthorID: authorID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&follow)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "create_if_absent")
		return false, translateError(res.Error, "Follow", authorID)
	}
	created := res.RowsAffected > 0
	if created {
		r.log.LogCreate(ctx, map[string]interface{}{"user_id": followerID, "author_id": authorID})
	}
	return created, nil
}

func (r *followRepository) DeleteByAuthorUsername(ctx context.Context, followerID uint, username string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id IN (SELECT id FROM users WHERE username = ?)", followerID, username).
		Delete(&models.Follow{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return 0, translateError(res.Error, "Follow", username)
	}
	if res.RowsAffected > 0 {
		r.log.LogDelete(ctx, map[string]interface{}{"user_id": followerID, "author": username})
	}
	return res.RowsAffected, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, authorID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Count(&n).Error
	if err != nil {
		return false, translateError(err, "Follow", authorID)
	}
	return n > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&n).Error; err != nil {
		return 0, translateError(err, "Follow", authorID)
	}
	return n, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", followerID).Count(&n).Error; err != nil {
		return 0, translateError(err, "Follow", followerID)
	}
	return n, nil
}

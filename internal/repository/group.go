package repository

import (
	"context"
	"errors"

	"quill/internal/models"
	"quill/internal/observability"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	// Delete removes the group. Its posts survive without a group.
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db, log: observability.NewRepoLogger("groups")}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "Group", group.Slug)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"group_id": group.ID, "slug": group.Slug})
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translateError(err, "Group", id)
	}
	return &group, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translateError(err, "Group", slug)
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.WithContext(ctx).Order("title ASC").Order("id ASC").Find(&groups).Error; err != nil {
		return nil, translateError(err, "Group", nil)
	}
	return groups, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", group.ID).Updates(map[string]interface{}{
		"title":       group.Title,
		"slug":        group.Slug,
		"description": group.Description,
	})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return translateError(res.Error, "Group", group.Slug)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Group", group.ID)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"group_id": group.ID})
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	var detached int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil)
		if res.Error != nil {
			return res.Error
		}
		detached = res.RowsAffected
		return tx.Delete(&group).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.LogError(ctx, err, "delete")
		}
		return translateError(err, "Group", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"group_id": id, "detached_posts": detached})
	return nil
}

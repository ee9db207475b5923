package service

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/validation"
)

// GroupInput is the payload for creating or changing a group.
type GroupInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Slug        string `json:"slug" form:"slug" validate:"required,slug"`
	Description string `json:"description" form:"description" validate:"required"`
}

func (in *GroupInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
}

// GroupService manages groups.
type GroupService struct {
	groupRepo repository.GroupRepository
	logger    *observability.StructuredLogger
}

// NewGroupService returns a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo, logger: observability.NewStructuredLogger()}
}

// CreateGroup validates the input and stores a new group. A taken slug is a
// constraint violation.
func (s *GroupService) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	group := &models.Group{Title: in.Title, Slug: in.Slug, Description: in.Description}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		s.logger.LogServiceError(ctx, "GroupService", "CreateGroup", err)
		return nil, err
	}
	s.logger.LogServiceCall(ctx, "GroupService", "CreateGroup", map[string]interface{}{"slug": group.Slug})
	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.groupRepo.List(ctx)
}

// UpdateGroup replaces title, slug and description of the group found by slug.
func (s *GroupService) UpdateGroup(ctx context.Context, slug string, in GroupInput) (*models.Group, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	group.Title = in.Title
	group.Slug = in.Slug
	group.Description = in.Description
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	s.logger.LogServiceCall(ctx, "GroupService", "UpdateGroup", map[string]interface{}{"group_id": group.ID})
	return group, nil
}

// DeleteGroup removes the group. Its posts stay and lose their group.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		return err
	}
	s.logger.LogServiceCall(ctx, "GroupService", "DeleteGroup", map[string]interface{}{"slug": slug})
	return nil
}

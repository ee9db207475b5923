package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

// FollowCounts holds both directions of a user's follow edges.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// FollowService maintains the directed follow graph between users.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	logger     *observability.StructuredLogger
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		logger:     observability.NewStructuredLogger(),
	}
}

// Follow makes viewerID follow the user named username. Following yourself
// and following twice are both silent no-ops.
func (s *FollowService) Follow(ctx context.Context, viewerID uint, username string) error {
	if viewerID == 0 {
		return models.NewUnauthorizedError("Login required to follow authors")
	}

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == viewerID {
		return nil
	}

	created, err := s.followRepo.CreateIfAbsent(ctx, viewerID, author.ID)
	if err != nil {
		return err
	}
	if created {
		observability.FollowEdgesTotal.WithLabelValues("follow").Inc()
		s.logger.LogServiceCall(ctx, "FollowService", "Follow", map[string]interface{}{
			"follower_id": viewerID,
			"author_id":   author.ID,
		})
	}
	return nil
}

// Unfollow removes the edge from viewerID to username if there is one.
func (s *FollowService) Unfollow(ctx context.Context, viewerID uint, username string) error {
	if viewerID == 0 {
		return models.NewUnauthorizedError("Login required to unfollow authors")
	}

	removed, err := s.followRepo.DeleteByAuthorUsername(ctx, viewerID, username)
	if err != nil {
		return err
	}
	if removed > 0 {
		observability.FollowEdgesTotal.WithLabelValues("unfollow").Inc()
		s.logger.LogServiceCall(ctx, "FollowService", "Unfollow", map[string]interface{}{
			"follower_id": viewerID,
			"author":      username,
		})
	}
	return nil
}

// IsFollowing reports whether followerID follows authorID. Anonymous callers
// follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, followerID, authorID)
}

// Counts returns how many users follow userID and how many userID follows.
func (s *FollowService) Counts(ctx context.Context, userID uint) (*FollowCounts, error) {
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FollowCounts{Followers: followers, Following: following}, nil
}

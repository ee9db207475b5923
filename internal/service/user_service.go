package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

// UserService exposes the user operations the feeds and admin tools need.
type UserService struct {
	userRepo repository.UserRepository
	logger   *observability.StructuredLogger
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, logger: observability.NewStructuredLogger()}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// DeleteUser removes the user and everything they own: posts, comments and
// follow edges in both directions.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		s.logger.LogServiceError(ctx, "UserService", "DeleteUser", err)
		return err
	}
	s.logger.LogServiceCall(ctx, "UserService", "DeleteUser", map[string]interface{}{"user_id": user.ID})
	return nil
}

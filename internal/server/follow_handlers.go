package server

import (
	"quill/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles POST /profile/:username/follow. Following yourself or
// someone you already follow succeeds without a change.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Follow(c.UserContext(), middleware.ViewerID(c), username); err != nil {
		return respondError(c, err)
	}
	return s.followState(c, username)
}

// ProfileUnfollow handles POST /profile/:username/unfollow
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Unfollow(c.UserContext(), middleware.ViewerID(c), username); err != nil {
		return respondError(c, err)
	}
	return s.followState(c, username)
}

// followState reports the viewer's edge to username after a change.
func (s *Server) followState(c *fiber.Ctx, username string) error {
	ctx := c.UserContext()
	author, err := s.userService.GetByUsername(ctx, username)
	if err != nil {
		return respondError(c, err)
	}
	following, err := s.followService.IsFollowing(ctx, middleware.ViewerID(c), author.ID)
	if err != nil {
		return respondError(c, err)
	}
	counts, err := s.followService.Counts(ctx, author.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"username":        author.Username,
		"following":       following,
		"followers_count": counts.Followers,
	})
}

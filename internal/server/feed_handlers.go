package server

import (
	"quill/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /. The page is served from the home feed cache while
// the entry lives.
func (s *Server) Index(c *fiber.Ctx) error {
	feed, err := s.feedService.GlobalFeed(c.UserContext(), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// GroupPosts handles GET /group/:slug
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.GroupFeed(c.UserContext(), c.Params("slug"), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// GroupList handles GET /groups
func (s *Server) GroupList(c *fiber.Ctx) error {
	groups, err := s.groupService.ListGroups(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// Profile handles GET /profile/:username
func (s *Server) Profile(c *fiber.Ctx) error {
	feed, err := s.feedService.ProfileFeed(c.UserContext(), c.Params("username"), middleware.ViewerID(c), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.feedService.PostDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// FollowIndex handles GET /follow
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	feed, err := s.feedService.FollowingFeed(c.UserContext(), middleware.ViewerID(c), pageParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

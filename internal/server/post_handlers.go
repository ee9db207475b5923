package server

import (
	"quill/internal/middleware"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostCreate handles POST /create
func (s *Server) PostCreate(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(c)
	}
	in.AuthorID = middleware.ViewerID(c)

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// PostEditForm handles GET /posts/:id/edit
func (s *Server) PostEditForm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	form, err := s.postService.EditForm(c.UserContext(), middleware.ViewerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(form)
}

// PostEdit handles POST /posts/:id/edit
func (s *Server) PostEdit(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.EditPostInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(c)
	}
	in.ViewerID = middleware.ViewerID(c)
	in.PostID = id

	post, err := s.postService.EditPost(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// PostDelete handles POST /posts/:id/delete
func (s *Server) PostDelete(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), middleware.ViewerID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddComment handles POST /posts/:id/comment
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.AddCommentInput
	if err := c.BodyParser(&in); err != nil {
		return bodyError(c)
	}
	in.ViewerID = middleware.ViewerID(c)
	in.PostID = id

	comment, err := s.postService.AddComment(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

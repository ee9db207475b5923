package service

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/validation"
)

// PostTextMaxLength bounds the text of a post or comment.
const PostTextMaxLength = 10000

// CreatePostInput is the payload for publishing a post.
type CreatePostInput struct {
	AuthorID uint   `json:"-" form:"-"`
	Text     string `json:"text" form:"text" validate:"required,max=10000"`
	GroupID  *uint  `json:"group" form:"group"`
	Image    string `json:"image" form:"image" validate:"max=255"`
}

// EditPostInput is the payload for changing a post.
type EditPostInput struct {
	ViewerID uint   `json:"-" form:"-"`
	PostID   uint   `json:"-" form:"-"`
	Text     string `json:"text" form:"text" validate:"required,max=10000"`
	GroupID  *uint  `json:"group" form:"group"`
	Image    string `json:"image" form:"image" validate:"max=255"`
}

// AddCommentInput is the payload for commenting on a post.
type AddCommentInput struct {
	ViewerID uint   `json:"-" form:"-"`
	PostID   uint   `json:"-" form:"-"`
	Text     string `json:"text" form:"text" validate:"required,max=10000"`
}

// EditForm pre-fills the post edit form.
type EditForm struct {
	Post   *models.Post    `json:"post"`
	Groups []*models.Group `json:"groups"`
	IsEdit bool            `json:"is_edit"`
}

// PostService handles post and comment writes.
type PostService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	logger      *observability.StructuredLogger
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	commentRepo repository.CommentRepository,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		commentRepo: commentRepo,
		logger:      observability.NewStructuredLogger(),
	}
}

// CreatePost publishes a post. The home page cache is left alone, so the post
// shows up there once the cached page expires.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Login required to publish posts")
	}
	in.Text = strings.TrimSpace(in.Text)
	in.Image = strings.TrimSpace(in.Image)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		Image:    in.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.LogServiceCall(ctx, "PostService", "CreatePost", map[string]interface{}{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	})

	return s.postRepo.GetByID(ctx, post.ID)
}

// EditForm returns the post for editing. Only the author may edit.
func (s *PostService) EditForm(ctx context.Context, viewerID, postID uint) (*EditForm, error) {
	post, err := s.authorPost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &EditForm{Post: post, Groups: groups, IsEdit: true}, nil
}

// EditPost changes text, group and image of a post owned by the viewer.
// The publication date stays as it was.
func (s *PostService) EditPost(ctx context.Context, in EditPostInput) (*models.Post, error) {
	post, err := s.authorPost(ctx, in.ViewerID, in.PostID)
	if err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	in.Image = strings.TrimSpace(in.Image)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Image = in.Image
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.logger.LogServiceCall(ctx, "PostService", "EditPost", map[string]interface{}{"post_id": post.ID})

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post owned by the viewer together with its comments.
func (s *PostService) DeletePost(ctx context.Context, viewerID, postID uint) error {
	if _, err := s.authorPost(ctx, viewerID, postID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.logger.LogServiceCall(ctx, "PostService", "DeletePost", map[string]interface{}{"post_id": postID})
	return nil
}

// AddComment attaches a comment by the viewer to a post.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.ViewerID == 0 {
		return nil, models.NewUnauthorizedError("Login required to comment")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   &post.ID,
		AuthorID: in.ViewerID,
		Text:     in.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.LogServiceCall(ctx, "PostService", "AddComment", map[string]interface{}{
		"post_id":    post.ID,
		"comment_id": comment.ID,
	})
	return comment, nil
}

// authorPost loads the post and checks that viewerID wrote it.
func (s *PostService) authorPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthorizedError("Login required to change posts")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(viewerID) {
		return nil, models.NewUnauthorizedError("Only the author can change this post")
	}
	return post, nil
}

func (s *PostService) ensureGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		if models.IsNotFound(err) {
			return models.NewConstraintViolationError("Selected group does not exist", err)
		}
		return err
	}
	return nil
}

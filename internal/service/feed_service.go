// Package service holds the feed, follow and write operations behind the
// HTTP handlers.
package service

import (
	"context"
	"fmt"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/pagination"
	"quill/internal/repository"
)

// PostPage is one page of a feed.
type PostPage = pagination.Page[*models.Post]

// IndexFeed is the home page: every post plus the requested page.
type IndexFeed struct {
	Posts   []*models.Post `json:"posts"`
	PageObj PostPage       `json:"page_obj"`
}

// GroupFeed lists the posts filed under one group.
type GroupFeed struct {
	Group   *models.Group  `json:"group"`
	Posts   []*models.Post `json:"posts"`
	PageObj PostPage       `json:"page_obj"`
}

// ProfileFeed lists one author's posts along with the viewer's follow state.
type ProfileFeed struct {
	Author         *models.User   `json:"author"`
	AuthorName     string         `json:"author_name"`
	PostsSum       int64          `json:"posts_sum"`
	PostList       []*models.Post `json:"post_list"`
	Following      bool           `json:"following"`
	FollowersCount int64          `json:"followers_count"`
	FollowingCount int64          `json:"following_count"`
	PageObj        PostPage       `json:"page_obj"`
}

// FollowFeed lists posts by the authors the viewer follows.
type FollowFeed struct {
	PageObj PostPage `json:"page_obj"`
}

// CommentForm describes where and how a comment is submitted.
type CommentForm struct {
	Action string   `json:"action"`
	Fields []string `json:"fields"`
}

// PostDetail is a single post with its discussion.
type PostDetail struct {
	Post      *models.Post      `json:"post"`
	Comments  []*models.Comment `json:"comments"`
	PostCount int64             `json:"post_count"`
	Form      CommentForm       `json:"form"`
}

// FeedService composes the read-only feeds. All feeds share one query path
// and differ only in scope and side data.
type FeedService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	index       *cache.IndexCache
	logger      *observability.StructuredLogger
}

// NewFeedService returns a new FeedService. A nil index disables home page
// caching.
func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	followRepo repository.FollowRepository,
	index *cache.IndexCache,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
		index:       index,
		logger:      observability.NewStructuredLogger(),
	}
}

// feed loads the whole ordered sequence for scope and cuts the requested page.
func (s *FeedService) feed(ctx context.Context, name string, scope repository.Scope, page int) ([]*models.Post, PostPage, error) {
	defer observability.TrackFeed(name)()

	ctx, span := observability.GetTraceLayer().TraceFeedQuery(ctx, name, page)
	defer span.End()

	posts, err := s.postRepo.ListByScope(ctx, scope)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, PostPage{}, err
	}
	return posts, pagination.Paginate(posts, pagination.PageSize, page), nil
}

// feedPage loads only the requested page for feeds that never expose the
// full sequence.
func (s *FeedService) feedPage(ctx context.Context, name string, scope repository.Scope, page int) (PostPage, error) {
	defer observability.TrackFeed(name)()

	ctx, span := observability.GetTraceLayer().TraceFeedQuery(ctx, name, page)
	defer span.End()

	count, err := s.postRepo.CountByScope(ctx, scope)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return PostPage{}, err
	}
	number, offset := pagination.Window(int(count), pagination.PageSize, page)
	if count == 0 {
		return pagination.NewPage[*models.Post](nil, 0, pagination.PageSize, number), nil
	}

	posts, err := s.postRepo.ListPageByScope(ctx, scope, pagination.PageSize, offset)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return PostPage{}, err
	}
	return pagination.NewPage(posts, int(count), pagination.PageSize, number), nil
}

// GlobalFeed returns the home page. The result is cached as a whole under one
// key, so while the entry lives every page number gets the cached page.
func (s *FeedService) GlobalFeed(ctx context.Context, page int) (*IndexFeed, error) {
	s.logger.LogServiceCall(ctx, "FeedService", "GlobalFeed", map[string]interface{}{"page": page})

	var out IndexFeed
	load := func() error {
		posts, p, err := s.feed(ctx, "index", repository.GlobalScope(), page)
		if err != nil {
			return err
		}
		out = IndexFeed{Posts: posts, PageObj: p}
		return nil
	}

	if s.index == nil {
		if err := load(); err != nil {
			return nil, err
		}
		return &out, nil
	}
	if err := s.index.Fetch(ctx, &out, load); err != nil {
		return nil, err
	}
	return &out, nil
}

// GroupFeed returns the posts of the group with the given slug.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page int) (*GroupFeed, error) {
	s.logger.LogServiceCall(ctx, "FeedService", "GroupFeed", map[string]interface{}{"slug": slug, "page": page})

	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	posts, p, err := s.feed(ctx, "group", repository.GroupScope(group.ID), page)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Posts: posts, PageObj: p}, nil
}

// ProfileFeed returns an author's posts. viewerID is 0 for anonymous viewers,
// who never follow anyone.
func (s *FeedService) ProfileFeed(ctx context.Context, username string, viewerID uint, page int) (*ProfileFeed, error) {
	s.logger.LogServiceCall(ctx, "FeedService", "ProfileFeed", map[string]interface{}{"username": username, "page": page})

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, p, err := s.feed(ctx, "profile", repository.AuthorScope(author.ID), page)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 {
		if following, err = s.followRepo.Exists(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	followers, err := s.followRepo.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	follows, err := s.followRepo.CountFollowing(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	return &ProfileFeed{
		Author:         author,
		AuthorName:     author.FullName(),
		PostsSum:       int64(len(posts)),
		PostList:       posts,
		Following:      following,
		FollowersCount: followers,
		FollowingCount: follows,
		PageObj:        p,
	}, nil
}

// FollowingFeed returns posts by the authors viewerID follows.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uint, page int) (*FollowFeed, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthorizedError("Login required to view followed authors")
	}
	s.logger.LogServiceCall(ctx, "FeedService", "FollowingFeed", map[string]interface{}{"viewer_id": viewerID, "page": page})

	p, err := s.feedPage(ctx, "follow", repository.FollowingScope(viewerID), page)
	if err != nil {
		return nil, err
	}
	return &FollowFeed{PageObj: p}, nil
}

// PostDetail returns a post, its comments newest first, and the author's
// total post count.
func (s *FeedService) PostDetail(ctx context.Context, postID uint) (*PostDetail, error) {
	s.logger.LogServiceCall(ctx, "FeedService", "PostDetail", map[string]interface{}{"post_id": postID})

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{
		Post:      post,
		Comments:  comments,
		PostCount: count,
		Form:      newCommentForm(post.ID),
	}, nil
}

// InvalidateIndex drops the cached home page.
func (s *FeedService) InvalidateIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	return s.index.Invalidate(ctx)
}

func newCommentForm(postID uint) CommentForm {
	return CommentForm{
		Action: fmt.Sprintf("/posts/%d/comment", postID),
		Fields: []string{"text"},
	}
}

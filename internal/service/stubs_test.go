package service

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/repository"
)

type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, uint) error
	listByScopeFn     func(context.Context, repository.Scope) ([]*models.Post, error)
	listPageByScopeFn func(context.Context, repository.Scope, int, int) ([]*models.Post, error)
	countByScopeFn    func(context.Context, repository.Scope) (int64, error)
	countByAuthorFn   func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ListByScope(ctx context.Context, scope repository.Scope) ([]*models.Post, error) {
	return s.listByScopeFn(ctx, scope)
}
func (s *postRepoStub) ListPageByScope(ctx context.Context, scope repository.Scope, limit, offset int) ([]*models.Post, error) {
	return s.listPageByScopeFn(ctx, scope, limit, offset)
}
func (s *postRepoStub) CountByScope(ctx context.Context, scope repository.Scope) (int64, error) {
	return s.countByScopeFn(ctx, scope)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}

type groupRepoStub struct {
	createFn    func(context.Context, *models.Group) error
	getByIDFn   func(context.Context, uint) (*models.Group, error)
	getBySlugFn func(context.Context, string) (*models.Group, error)
	listFn      func(context.Context) ([]*models.Group, error)
	updateFn    func(context.Context, *models.Group) error
	deleteFn    func(context.Context, uint) error
}

func (s *groupRepoStub) Create(ctx context.Context, group *models.Group) error {
	return s.createFn(ctx, group)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) List(ctx context.Context) ([]*models.Group, error) {
	return s.listFn(ctx)
}
func (s *groupRepoStub) Update(ctx context.Context, group *models.Group) error {
	return s.updateFn(ctx, group)
}
func (s *groupRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listFn          func(context.Context) ([]*models.User, error)
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) List(ctx context.Context) ([]*models.User, error) {
	return s.listFn(ctx)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type followRepoStub struct {
	createFn                 func(context.Context, *models.Follow) error
	createIfAbsentFn         func(context.Context, uint, uint) (bool, error)
	deleteByAuthorUsernameFn func(context.Context, uint, string) (int64, error)
	existsFn                 func(context.Context, uint, uint) (bool, error)
	countFollowersFn         func(context.Context, uint) (int64, error)
	countFollowingFn         func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) CreateIfAbsent(ctx context.Context, followerID, authorID uint) (bool, error) {
	return s.createIfAbsentFn(ctx, followerID, authorID)
}
func (s *followRepoStub) DeleteByAuthorUsername(ctx context.Context, followerID uint, username string) (int64, error) {
	return s.deleteByAuthorUsernameFn(ctx, followerID, username)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, authorID uint) (bool, error) {
	return s.existsFn(ctx, followerID, authorID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return s.countFollowersFn(ctx, authorID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	return s.countFollowingFn(ctx, followerID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(context.Context, *models.Post) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		updateFn:      func(context.Context, *models.Post) error { return nil },
		deleteFn:      func(context.Context, uint) error { return nil },
		listByScopeFn: func(context.Context, repository.Scope) ([]*models.Post, error) { return []*models.Post{}, nil },
		listPageByScopeFn: func(context.Context, repository.Scope, int, int) ([]*models.Post, error) {
			return []*models.Post{}, nil
		},
		countByScopeFn:  func(context.Context, repository.Scope) (int64, error) { return 0, nil },
		countByAuthorFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		createFn:    func(context.Context, *models.Group) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Group, error) { return &models.Group{ID: id}, nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) { return &models.Group{ID: 1, Slug: slug}, nil },
		listFn:      func(context.Context) ([]*models.Group, error) { return []*models.Group{}, nil },
		updateFn:    func(context.Context, *models.Group) error { return nil },
		deleteFn:    func(context.Context, uint) error { return nil },
	}
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:  func(context.Context, *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		listFn:   func(context.Context) ([]*models.User, error) { return []*models.User{}, nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(context.Context, *models.Comment) error { return nil },
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:                 func(context.Context, *models.Follow) error { return nil },
		createIfAbsentFn:         func(context.Context, uint, uint) (bool, error) { return true, nil },
		deleteByAuthorUsernameFn: func(context.Context, uint, string) (int64, error) { return 0, nil },
		existsFn:                 func(context.Context, uint, uint) (bool, error) { return false, nil },
		countFollowersFn:         func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowingFn:         func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

func assertAppErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	if models.ErrorCode(err) != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

// Package seed creates demo data for development databases.
package seed

import (
	"fmt"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities with fake content and persists them.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   time.Time
	seq   int
}

// NewFactory returns a Factory. The same seed yields the same content.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), now: time.Now()}
}

// CreateUser persists a user with a unique, generated username.
func (f *Factory) CreateUser() (*models.User, error) {
	f.seq++
	user := &models.User{
		Username:  fmt.Sprintf("%s%d", f.faker.Username(), f.seq),
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post by author, in group when group is not nil,
// published at some point in the last 90 days.
func (f *Factory) CreatePost(author *models.User, group *models.Group) (*models.Post, error) {
	post := &models.Post{
		Text:      f.faker.Paragraph(1, 3, 12, "\n"),
		AuthorID:  author.ID,
		CreatedAt: f.pastDate(90 * 24 * time.Hour),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := f.db.Omit("Author", "Group").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by author on post, after the post.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    &post.ID,
		AuthorID:  author.ID,
		Text:      f.faker.Sentence(f.faker.Number(3, 15)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute),
	}
	if err := f.db.Omit("Author", "Post").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Pick returns a random index in [0, n).
func (f *Factory) Pick(n int) int {
	return f.faker.Number(0, n-1)
}

func (f *Factory) pastDate(window time.Duration) time.Time {
	return f.faker.DateRange(f.now.Add(-window), f.now).UTC()
}

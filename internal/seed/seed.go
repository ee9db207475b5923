package seed

import (
	"context"
	"log"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// Seed fixes the generated content; zero picks one from the clock.
	Seed int64
}

// maxFollows bounds how many authors a seeded user follows.
const maxFollows = 5

// Seed fills db with groups, users, posts, comments and follow edges.
func Seed(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return err
		}
	}

	groups, err := Groups(db)
	if err != nil {
		return err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := NewFactory(db, seed)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, u)
	}
	log.Printf("Created %d users", len(users))
	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.Pick(len(users))]
		// Roughly one post in four has no group.
		var group *models.Group
		if len(groups) > 0 && f.Pick(4) != 0 {
			group = groups[f.Pick(len(groups))]
		}
		p, err := f.CreatePost(author, group)
		if err != nil {
			return err
		}
		posts = append(posts, p)
	}
	log.Printf("Created %d posts", len(posts))

	comments := 0
	for _, p := range posts {
		for n := f.Pick(4); n > 0; n-- {
			if _, err := f.CreateComment(users[f.Pick(len(users))], p); err != nil {
				return err
			}
			comments++
		}
	}
	log.Printf("Created %d comments", comments)

	follows := repository.NewFollowRepository(db)
	edges := 0
	ctx := context.Background()
	for _, u := range users {
		for n := f.Pick(maxFollows + 1); n > 0; n-- {
			author := users[f.Pick(len(users))]
			if author.ID == u.ID {
				continue
			}
			created, err := follows.CreateIfAbsent(ctx, u.ID, author.ID)
			if err != nil {
				return err
			}
			if created {
				edges++
			}
		}
	}
	log.Printf("Created %d follow edges", edges)

	return nil
}

// clearData removes every row, children first.
func clearData(db *gorm.DB) error {
	log.Println("Cleaning database...")
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

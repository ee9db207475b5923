// Command main provides maintenance commands for quill.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin clear-cache              - Empty the cache store")
	fmt.Println("  go run ./cmd/admin delete-user <username>   - Delete a user and their content")
	fmt.Println("  go run ./cmd/admin delete-group <slug>      - Delete a group, keeping its posts")
	fmt.Println("  go run ./cmd/admin list-groups              - List all groups")
	fmt.Println("  go run ./cmd/admin migrate                  - Apply schema migrations")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	command := os.Args[1]
	if command == "clear-cache" {
		clearCache(ctx, cfg)
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch command {
	case "delete-user":
		requireArg("delete-user <username>")
		users := service.NewUserService(repository.NewUserRepository(db))
		exitOnError(users.DeleteUser(ctx, os.Args[2]))
		fmt.Printf("Deleted user %s\n", os.Args[2])

	case "delete-group":
		requireArg("delete-group <slug>")
		groups := service.NewGroupService(repository.NewGroupRepository(db))
		exitOnError(groups.DeleteGroup(ctx, os.Args[2]))
		fmt.Printf("Deleted group %s\n", os.Args[2])

	case "list-groups":
		listGroups(ctx, db)

	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Schema is up to date")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func requireArg(form string) {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin %s\n", form)
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	if models.IsNotFound(err) {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	log.Fatalf("Command failed: %v", err)
}

func clearCache(ctx context.Context, cfg *config.Config) {
	if cfg.CacheBackend != "redis" {
		fmt.Println("Memory cache lives inside the server process; restart it to clear")
		return
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer func() { _ = client.Close() }()

	index := cache.NewIndexCache(cache.NewRedisStore(client, cache.StorePrefix(cfg.CachePrefix)), cfg.IndexCacheTTL())
	if err := index.Clear(ctx); err != nil {
		log.Fatalf("Failed to clear cache: %v", err)
	}
	fmt.Println("Cache cleared")
}

func listGroups(ctx context.Context, db *gorm.DB) {
	groups, err := service.NewGroupService(repository.NewGroupRepository(db)).ListGroups(ctx)
	if err != nil {
		log.Fatalf("Failed to list groups: %v", err)
	}
	fmt.Printf("Found %d group(s):\n", len(groups))
	for _, g := range groups {
		fmt.Printf("  %-20s %s\n", g.Slug, g.Title)
	}
}

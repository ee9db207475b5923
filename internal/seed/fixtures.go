package seed

import (
	_ "embed"
	"fmt"

	"quill/internal/models"
	"quill/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures/groups.yml
var groupsYAML []byte

// GroupFixture is one built-in group.
type GroupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// LoadGroupFixtures parses the embedded group list and checks every slug.
func LoadGroupFixtures() ([]GroupFixture, error) {
	return parseGroupFixtures(groupsYAML)
}

func parseGroupFixtures(raw []byte) ([]GroupFixture, error) {
	var doc struct {
		Groups []GroupFixture `yaml:"groups"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse group fixtures: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Groups))
	for _, g := range doc.Groups {
		if err := validation.ValidateGroupSlug(g.Slug); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Title, err)
		}
		if _, dup := seen[g.Slug]; dup {
			return nil, fmt.Errorf("group slug %q listed twice", g.Slug)
		}
		seen[g.Slug] = struct{}{}
	}
	return doc.Groups, nil
}

// Groups upserts the built-in groups by slug and returns them.
func Groups(db *gorm.DB) ([]*models.Group, error) {
	fixtures, err := LoadGroupFixtures()
	if err != nil {
		return nil, err
	}

	out := make([]*models.Group, 0, len(fixtures))
	for _, item := range fixtures {
		group := &models.Group{Title: item.Title, Slug: item.Slug, Description: item.Description}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(group).Error; err != nil {
			return nil, fmt.Errorf("seed group %s: %w", item.Slug, err)
		}
		if err := db.Where("slug = ?", item.Slug).First(group).Error; err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}

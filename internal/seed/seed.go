// Package seed fills a gateway with built-in categories and demo forum data
// for development and testing.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"boatlog/internal/middleware"
	"boatlog/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yml
var categoriesYAML []byte

// CategorySeed is one entry of the built-in category list.
type CategorySeed struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

type categoryFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// Options configures a demo data run.
type Options struct {
	Profiles        int
	Posts           int
	CommentsPerPost int
	MaxDays         int
	Seed            int64
	Clean           bool
}

// DefaultOptions is a small but lively forum.
var DefaultOptions = Options{
	Profiles:        25,
	Posts:           120,
	CommentsPerPost: 4,
	MaxDays:         120,
}

// Result counts what a run created.
type Result struct {
	Categories int
	Profiles   int
	Posts      int
	Comments   int
}

// ParseCategories decodes a category list and rejects blank or duplicate slugs.
func ParseCategories(raw []byte) ([]CategorySeed, error) {
	var file categoryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	seen := make(map[string]bool, len(file.Categories))
	for i, c := range file.Categories {
		slug := strings.TrimSpace(c.Slug)
		if slug == "" || strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d: name and slug are required", i)
		}
		if seen[slug] {
			return nil, fmt.Errorf("category %d: duplicate slug %q", i, slug)
		}
		seen[slug] = true
		file.Categories[i].Slug = slug
	}
	return file.Categories, nil
}

// BuiltInCategories returns the embedded category list.
func BuiltInCategories() ([]CategorySeed, error) {
	return ParseCategories(categoriesYAML)
}

// Categories upserts the built-in categories by slug and returns them as stored.
func Categories(db *gorm.DB) ([]models.Category, error) {
	seeds, err := BuiltInCategories()
	if err != nil {
		return nil, err
	}

	out := make([]models.Category, 0, len(seeds))
	for _, s := range seeds {
		cat := models.Category{Name: s.Name, Slug: s.Slug, Icon: s.Icon, Description: s.Description}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "icon", "description"}),
		}).Create(&cat).Error; err != nil {
			return nil, fmt.Errorf("upsert category %s: %w", s.Slug, err)
		}
		// On conflict the generated ID is not the stored one.
		if err := db.Where("slug = ?", s.Slug).First(&cat).Error; err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

// Seeder writes demo data through a gorm handle.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a Seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes forum content. Categories and profiles are kept unless includeIdentity is set.
func (s *Seeder) ClearAll(includeIdentity bool) error {
	tables := []interface{}{
		&models.Notification{},
		&models.CommentLike{},
		&models.PostLike{},
		&models.PostRead{},
		&models.Comment{},
		&models.Post{},
	}
	if includeIdentity {
		tables = append(tables, &models.UserStats{}, &models.UserProfile{})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Run seeds categories, then profiles with stats, posts and comments.
func (s *Seeder) Run(opts Options) (*Result, error) {
	if opts.Profiles <= 0 && opts.Posts > 0 {
		return nil, errors.New("posts need at least one profile")
	}

	if opts.Clean {
		if err := s.ClearAll(true); err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
	}

	cats, err := Categories(s.db)
	if err != nil {
		return nil, err
	}
	res := &Result{Categories: len(cats)}
	if len(cats) == 0 {
		return res, nil
	}

	f := NewFactory(opts.Seed, opts.MaxDays)

	profiles := make([]models.UserProfile, opts.Profiles)
	stats := make([]models.UserStats, opts.Profiles)
	for i := range profiles {
		profiles[i] = f.Profile()
		stats[i] = f.Stats(profiles[i].ID)
	}

	posts := make([]models.Post, opts.Posts)
	var comments []models.Comment
	for i := range posts {
		author := profiles[f.Pick(len(profiles))].ID
		posts[i] = f.Post(author, cats[f.Pick(len(cats))].ID)
		for j := 0; j < opts.CommentsPerPost; j++ {
			comments = append(comments, f.Comment(posts[i], profiles[f.Pick(len(profiles))].ID))
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := createInBatches(tx, profiles); err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
		if err := createInBatches(tx, stats); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		if err := createInBatches(tx, posts); err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		if err := createInBatches(tx, comments); err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		return syncPostCounts(tx)
	})
	if err != nil {
		return nil, err
	}

	res.Profiles = len(profiles)
	res.Posts = len(posts)
	res.Comments = len(comments)
	middleware.Logger.Info("seed complete",
		slog.Int("categories", res.Categories),
		slog.Int("profiles", res.Profiles),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

func createInBatches[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 100).Error
}

// syncPostCounts recomputes the denormalized per-category post counters.
func syncPostCounts(tx *gorm.DB) error {
	return tx.Exec(`UPDATE categories SET post_count = (
		SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id
	)`).Error
}

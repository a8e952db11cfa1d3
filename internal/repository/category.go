package repository

import (
	"context"

	"boatlog/internal/models"
	"boatlog/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository reads forum categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
}

type categoryRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db, metrics: observability.NewDatabaseMetrics("categories")}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	defer r.metrics.TrackQuery("list")()

	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

package repository

import (
	"context"

	"boatlog/internal/models"
	"boatlog/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository reads user profiles owned by the identity subsystem.
type ProfileRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
}

type profileRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, metrics: observability.NewDatabaseMetrics("profiles")}
}

// GetByIDs loads every profile in ids with one query. Missing ids are simply absent from the result.
func (r *profileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer r.metrics.TrackQuery("get_many")()

	var profiles []models.UserProfile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	defer r.metrics.TrackQuery("get")()

	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

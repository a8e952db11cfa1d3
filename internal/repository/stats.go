package repository

import (
	"context"

	"boatlog/internal/models"
	"boatlog/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsRepository reads reputation rows from user_stats.
type StatsRepository interface {
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.UserStats, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

type statsRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db, metrics: observability.NewDatabaseMetrics("user_stats")}
}

func (r *statsRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.UserStats, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	defer r.metrics.TrackQuery("get_many")()

	var stats []models.UserStats
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	defer r.metrics.TrackQuery("get")()

	var stats models.UserStats
	if err := r.db.WithContext(ctx).First(&stats, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

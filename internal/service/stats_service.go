package service

import (
	"context"
	"errors"

	"boatlog/internal/models"
	"boatlog/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// GetUserStats returns the user's stats row, or the zero-value default when the user has none.
// The default is never written back.
func (s *StatsService) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	stats, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			def := models.DefaultUserStats(userID)
			return &def, nil
		}
		return nil, models.NewInternalError(err)
	}
	if stats.Rank == "" {
		stats.Rank = models.RankForPoints(stats.Points)
	}
	return stats, nil
}

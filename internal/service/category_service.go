package service

import (
	"context"
	"log/slog"

	"boatlog/internal/middleware"
	"boatlog/internal/models"
	"boatlog/internal/observability"
	"boatlog/internal/repository"
)

type CategoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// ListCategories returns every category ordered by name, or an empty list on failure.
func (s *CategoryService) ListCategories(ctx context.Context) []models.Category {
	out, err := s.repo.List(ctx)
	if err != nil {
		observability.ListingFailSoftTotal.WithLabelValues("categories").Inc()
		middleware.Logger.ErrorContext(ctx, "list categories failed", slog.String("error", err.Error()))
		return []models.Category{}
	}
	if out == nil {
		return []models.Category{}
	}
	return out
}

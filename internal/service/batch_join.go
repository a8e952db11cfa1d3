// Package service holds the forum's business logic between HTTP handlers and the gateway.
package service

import (
	"context"
	"errors"
	"log/slog"

	"boatlog/internal/middleware"
	"boatlog/internal/models"
	"boatlog/internal/observability"
	"boatlog/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// AuthorJoiner attaches author profiles and stats to posts with one batched lookup per table.
type AuthorJoiner struct {
	profiles repository.ProfileRepository
	stats    repository.StatsRepository
}

// NewAuthorJoiner creates an AuthorJoiner.
func NewAuthorJoiner(profiles repository.ProfileRepository, stats repository.StatsRepository) *AuthorJoiner {
	return &AuthorJoiner{profiles: profiles, stats: stats}
}

// Join enriches posts in order. Profiles and stats are fetched concurrently, each with a
// single IN query over the distinct author ids. A failed lookup degrades to placeholders.
func (j *AuthorJoiner) Join(ctx context.Context, posts []*models.Post) []models.EnrichedPost {
	out := make([]models.EnrichedPost, 0, len(posts))
	if len(posts) == 0 {
		return out
	}

	span, ctx := observability.NewSpan(ctx, "AuthorJoiner.Join")
	defer span.End()

	ids := distinctAuthorIDs(posts)
	span.AddAttributes(
		attribute.Int("posts", len(posts)),
		attribute.Int("authors", len(ids)),
	)

	var (
		profiles []models.UserProfile
		stats    []models.UserStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := j.profiles.GetByIDs(gctx, ids)
		if err != nil {
			span.SetError(err)
			middleware.Logger.WarnContext(ctx, "author profile lookup failed", slog.String("error", err.Error()))
			return nil
		}
		profiles = found
		return nil
	})
	g.Go(func() error {
		found, err := j.stats.GetByUserIDs(gctx, ids)
		if err != nil {
			span.SetError(err)
			middleware.Logger.WarnContext(ctx, "author stats lookup failed", slog.String("error", err.Error()))
			return nil
		}
		stats = found
		return nil
	})
	_ = g.Wait()

	profileByID := make(map[uuid.UUID]models.UserProfile, len(profiles))
	for _, p := range profiles {
		profileByID[p.ID] = p
	}
	statsByID := make(map[uuid.UUID]models.UserStats, len(stats))
	for _, s := range stats {
		statsByID[s.UserID] = s
	}

	for _, post := range posts {
		profile, hasProfile := profileByID[post.UserID]
		stat, hasStats := statsByID[post.UserID]
		out = append(out, merge(post, profile, hasProfile, stat, hasStats))
	}
	return out
}

// JoinOne enriches a single post using two concurrent single-row lookups.
func (j *AuthorJoiner) JoinOne(ctx context.Context, post *models.Post) models.EnrichedPost {
	span, ctx := observability.NewSpan(ctx, "AuthorJoiner.JoinOne")
	defer span.End()

	var (
		profile    *models.UserProfile
		stat       *models.UserStats
		profileErr error
		statsErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, profileErr = j.profiles.GetByID(gctx, post.UserID)
		return nil
	})
	g.Go(func() error {
		stat, statsErr = j.stats.GetByUserID(gctx, post.UserID)
		return nil
	})
	_ = g.Wait()

	logLookupError(ctx, "author profile lookup failed", profileErr)
	logLookupError(ctx, "author stats lookup failed", statsErr)

	var (
		p models.UserProfile
		s models.UserStats
	)
	if profile != nil {
		p = *profile
	}
	if stat != nil {
		s = *stat
	}
	return merge(post, p, profileErr == nil && profile != nil, s, statsErr == nil && stat != nil)
}

func merge(post *models.Post, profile models.UserProfile, hasProfile bool, stat models.UserStats, hasStats bool) models.EnrichedPost {
	if !hasProfile {
		observability.EnrichmentPlaceholders.WithLabelValues("profile").Inc()
		profile = models.PlaceholderProfile(post.UserID)
	}
	if !hasStats {
		observability.EnrichmentPlaceholders.WithLabelValues("stats").Inc()
		stat = models.DefaultUserStats(post.UserID)
	} else if stat.Rank == "" {
		stat.Rank = models.RankForPoints(stat.Points)
	}

	enriched := models.EnrichedPost{
		Post:        *post,
		Category:    models.SummarizeCategory(post.Category),
		Author:      &profile,
		AuthorStats: []models.UserStats{stat},
	}
	enriched.Post.Category = nil
	return enriched
}

func distinctAuthorIDs(posts []*models.Post) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(posts))
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	return ids
}

func logLookupError(ctx context.Context, msg string, err error) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	observability.RecordErrorInContext(ctx, err)
	middleware.Logger.WarnContext(ctx, msg, slog.String("error", err.Error()))
}

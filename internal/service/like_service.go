package service

import (
	"context"
	"log/slog"

	"boatlog/internal/featureflags"
	"boatlog/internal/middleware"
	"boatlog/internal/models"
	"boatlog/internal/observability"
	"boatlog/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	flags    *featureflags.Manager
	notifier NotificationSender
}

func NewLikeService(likeRepo repository.LikeRepository, flags *featureflags.Manager, notifier NotificationSender) *LikeService {
	return &LikeService{likeRepo: likeRepo, flags: flags, notifier: notifier}
}

// ToggleLike flips the caller's like on a post or comment and returns the resulting state.
func (s *LikeService) ToggleLike(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) (models.LikeResult, error) {
	if !kind.Valid() {
		return models.LikeResult{}, models.NewValidationError("Unknown like target")
	}

	span, ctx := observability.NewSpan(ctx, "LikeService.ToggleLike")
	defer span.End()
	span.AddAttributes(
		attribute.String("like.kind", string(kind)),
		attribute.String("like.subject_id", subjectID.String()),
	)

	var (
		liked bool
		err   error
	)
	if s.flags.Enabled(featureflags.LegacyLikeToggle, userID) {
		liked, err = s.toggleLegacy(ctx, kind, subjectID, userID)
	} else {
		liked, err = s.likeRepo.Toggle(ctx, kind, subjectID, userID)
	}
	if err != nil {
		span.SetError(err)
		observability.LikeTogglesTotal.WithLabelValues(string(kind), "error").Inc()
		return models.LikeResult{}, models.NewInternalError(err)
	}

	result := "unliked"
	if liked {
		result = "liked"
		s.notifyAuthor(ctx, kind, subjectID, userID)
	}
	observability.LikeTogglesTotal.WithLabelValues(string(kind), result).Inc()

	return models.LikeResult{Liked: liked}, nil
}

// toggleLegacy reads the state and acts on it in separate statements. Two concurrent
// likes can both see "not liked"; the loser gets repository.ErrDuplicateLike.
func (s *LikeService) toggleLegacy(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) (bool, error) {
	liked, err := s.likeRepo.IsLiked(ctx, kind, subjectID, userID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, s.likeRepo.Unlike(ctx, kind, subjectID, userID)
	}
	return true, s.likeRepo.Like(ctx, kind, subjectID, userID)
}

func (s *LikeService) notifyAuthor(ctx context.Context, kind models.SubjectKind, subjectID, actorID uuid.UUID) {
	if s.notifier == nil {
		return
	}

	authorID, err := s.likeRepo.SubjectAuthor(ctx, kind, subjectID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "resolve like subject author failed",
			slog.String("kind", string(kind)),
			slog.String("subject_id", subjectID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	if authorID == actorID || authorID == uuid.Nil {
		return
	}

	in := NotifyInput{RecipientID: authorID, ActorID: actorID}
	id := subjectID
	switch kind {
	case models.SubjectPost:
		in.Kind = models.NotificationPostLiked
		in.PostID = &id
	case models.SubjectComment:
		in.Kind = models.NotificationCommentLiked
		in.CommentID = &id
	}

	if _, err := s.notifier.Notify(ctx, in); err != nil {
		middleware.Logger.WarnContext(ctx, "like notification failed", slog.String("error", err.Error()))
	}
}

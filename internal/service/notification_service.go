package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"boatlog/internal/middleware"
	"boatlog/internal/models"
	"boatlog/internal/observability"
	"boatlog/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// Publisher delivers a serialized payload to a user's realtime channel.
type Publisher interface {
	PublishUser(ctx context.Context, userID uuid.UUID, payload string) error
}

// NotificationSender is what the like flow needs from the notification service.
type NotificationSender interface {
	Notify(ctx context.Context, in NotifyInput) (*models.Notification, error)
}

type NotifyInput struct {
	RecipientID uuid.UUID
	ActorID     uuid.UUID
	Kind        models.NotificationKind
	PostID      *uuid.UUID
	CommentID   *uuid.UUID
}

type NotificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	now       func() time.Time
}

// realtimeEnvelope is the message shape pushed to websocket clients.
type realtimeEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewNotificationService(repo repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Notify stores the notification and pushes it to the recipient. Publish failures are only logged.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if in.RecipientID == uuid.Nil || in.Kind == "" {
		return nil, models.NewValidationError("Missing required fields")
	}

	n := &models.Notification{
		UserID:    in.RecipientID,
		ActorID:   in.ActorID,
		Kind:      in.Kind,
		PostID:    in.PostID,
		CommentID: in.CommentID,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.publish(ctx, n)
	return n, nil
}

func (s *NotificationService) publish(ctx context.Context, n *models.Notification) {
	if s.publisher == nil {
		observability.NotificationsPublished.WithLabelValues("skipped").Inc()
		return
	}

	body, err := json.Marshal(realtimeEnvelope{Type: "notification", Payload: n})
	if err != nil {
		observability.NotificationsPublished.WithLabelValues("error").Inc()
		middleware.Logger.ErrorContext(ctx, "marshal notification failed", slog.String("error", err.Error()))
		return
	}

	if err := s.publisher.PublishUser(ctx, n.UserID, string(body)); err != nil {
		observability.NotificationsPublished.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "publish notification failed",
			slog.String("recipient_id", n.UserID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsPublished.WithLabelValues("ok").Inc()
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	out, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkRead(ctx, id, userID, s.now())
	if err != nil {
		return models.NewInternalError(err)
	}
	if !found {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return models.NewInternalError(fmt.Errorf("mark all read: %w", err))
	}
	middleware.Logger.DebugContext(ctx, "notifications marked read", slog.Int64("count", n))
	return nil
}

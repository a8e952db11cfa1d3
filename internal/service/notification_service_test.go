package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"boatlog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Notify(t *testing.T) {
	recipient, actor, postID := uuid.New(), uuid.New(), uuid.New()

	var stored *models.Notification
	repo := noopNotificationRepo()
	repo.createFn = func(_ context.Context, n *models.Notification) error {
		n.ID = uuid.New()
		stored = n
		return nil
	}
	pub := &publisherStub{}
	svc := NewNotificationService(repo, pub)

	out, err := svc.Notify(context.Background(), NotifyInput{
		RecipientID: recipient, ActorID: actor, Kind: models.NotificationPostLiked, PostID: &postID,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Same(t, stored, out)
	assert.Equal(t, recipient, out.UserID)
	assert.False(t, out.CreatedAt.IsZero())

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, recipient, pub.userIDs[0])

	var envelope struct {
		Type    string              `json:"type"`
		Payload models.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(pub.payloads[0]), &envelope))
	assert.Equal(t, "notification", envelope.Type)
	assert.Equal(t, stored.ID, envelope.Payload.ID)
	assert.Equal(t, models.NotificationPostLiked, envelope.Payload.Kind)
	require.NotNil(t, envelope.Payload.PostID)
	assert.Equal(t, postID, *envelope.Payload.PostID)
}

func TestNotificationService_NotifyPublishFailureIsLogged(t *testing.T) {
	svc := NewNotificationService(noopNotificationRepo(), &publisherStub{err: errGateway})

	out, err := svc.Notify(context.Background(), NotifyInput{
		RecipientID: uuid.New(), ActorID: uuid.New(), Kind: models.NotificationCommentLiked,
	})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestNotificationService_NotifyValidation(t *testing.T) {
	svc := NewNotificationService(noopNotificationRepo(), nil)

	_, err := svc.Notify(context.Background(), NotifyInput{ActorID: uuid.New(), Kind: models.NotificationPostLiked})
	assertAppError(t, err, models.CodeValidation, "Missing required fields")
}

func TestNotificationService_NotifyStoreFailure(t *testing.T) {
	repo := noopNotificationRepo()
	repo.createFn = func(context.Context, *models.Notification) error { return errGateway }
	pub := &publisherStub{}

	_, err := NewNotificationService(repo, pub).Notify(context.Background(), NotifyInput{
		RecipientID: uuid.New(), Kind: models.NotificationPostLiked,
	})
	assertAppError(t, err, models.CodeInternal, "")
	assert.Empty(t, pub.payloads, "nothing published when the row was not stored")
}

func TestNotificationService_ListClampsLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultNotificationLimit},
		{-3, defaultNotificationLimit},
		{10, 10},
		{1000, maxNotificationLimit},
	}
	for _, tt := range tests {
		var got int
		repo := noopNotificationRepo()
		repo.listByUserFn = func(_ context.Context, _ uuid.UUID, limit int) ([]models.Notification, error) {
			got = limit
			return nil, nil
		}
		out, err := NewNotificationService(repo, nil).List(context.Background(), uuid.New(), tt.in)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Equal(t, tt.want, got, "limit %d", tt.in)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	userID, id := uuid.New(), uuid.New()

	repo := noopNotificationRepo()
	repo.markReadFn = func(_ context.Context, gotID, gotUser uuid.UUID, at time.Time) (bool, error) {
		assert.Equal(t, fixed, at)
		return gotID == id && gotUser == userID, nil
	}
	svc := NewNotificationService(repo, nil)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.MarkRead(context.Background(), userID, id))

	err := svc.MarkRead(context.Background(), uuid.New(), id)
	assertAppError(t, err, models.CodeNotFound, "")
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	repo := noopNotificationRepo()
	repo.markAllReadFn = func(context.Context, uuid.UUID, time.Time) (int64, error) { return 0, errGateway }

	err := NewNotificationService(repo, nil).MarkAllRead(context.Background(), uuid.New())
	assertAppError(t, err, models.CodeInternal, "")
}

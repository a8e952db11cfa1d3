package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"boatlog/internal/models"
	"boatlog/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errGateway = errors.New("gateway unavailable")

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn           func(context.Context, repository.ListPostsFilter) ([]*models.Post, error)
	getByIDFn        func(context.Context, uuid.UUID) (*models.Post, error)
	getByUserIDFn    func(context.Context, uuid.UUID) ([]*models.Post, error)
	createFn         func(context.Context, *models.Post) error
	updateOwnedFn    func(context.Context, uuid.UUID, uuid.UUID, map[string]interface{}) (bool, error)
	deleteOwnedFn    func(context.Context, uuid.UUID, uuid.UUID) (bool, error)
	incrementViewsFn func(context.Context, uuid.UUID) error
	markReadFn       func(context.Context, uuid.UUID, uuid.UUID, time.Time) error
}

func (s *postRepoStub) List(ctx context.Context, f repository.ListPostsFilter) ([]*models.Post, error) {
	return s.listFn(ctx, f)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) UpdateOwned(ctx context.Context, id, userID uuid.UUID, updates map[string]interface{}) (bool, error) {
	return s.updateOwnedFn(ctx, id, userID, updates)
}
func (s *postRepoStub) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return s.deleteOwnedFn(ctx, id, userID)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *postRepoStub) MarkRead(ctx context.Context, userID, postID uuid.UUID, at time.Time) error {
	return s.markReadFn(ctx, userID, postID, at)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:        func(context.Context, repository.ListPostsFilter) ([]*models.Post, error) { return nil, nil },
		getByIDFn:     func(_ context.Context, id uuid.UUID) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByUserIDFn: func(context.Context, uuid.UUID) ([]*models.Post, error) { return nil, nil },
		createFn:      func(context.Context, *models.Post) error { return nil },
		updateOwnedFn: func(context.Context, uuid.UUID, uuid.UUID, map[string]interface{}) (bool, error) {
			return true, nil
		},
		deleteOwnedFn:    func(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return true, nil },
		incrementViewsFn: func(context.Context, uuid.UUID) error { return nil },
		markReadFn:       func(context.Context, uuid.UUID, uuid.UUID, time.Time) error { return nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByIDsFn func(context.Context, []uuid.UUID) ([]models.UserProfile, error)
	getByIDFn  func(context.Context, uuid.UUID) (*models.UserProfile, error)
	calls      int
}

func (s *profileRepoStub) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UserProfile, error) {
	s.calls++
	return s.getByIDsFn(ctx, ids)
}
func (s *profileRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	return s.getByIDFn(ctx, id)
}

// statsRepoStub is a stub for repository.StatsRepository.
type statsRepoStub struct {
	getByUserIDsFn func(context.Context, []uuid.UUID) ([]models.UserStats, error)
	getByUserIDFn  func(context.Context, uuid.UUID) (*models.UserStats, error)
	calls          int
}

func (s *statsRepoStub) GetByUserIDs(ctx context.Context, ids []uuid.UUID) ([]models.UserStats, error) {
	s.calls++
	return s.getByUserIDsFn(ctx, ids)
}
func (s *statsRepoStub) GetByUserID(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
	return s.getByUserIDFn(ctx, id)
}

// profilesFrom serves lookups from a fixed set of profiles.
func profilesFrom(profiles ...models.UserProfile) *profileRepoStub {
	byID := make(map[uuid.UUID]models.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return &profileRepoStub{
		getByIDsFn: func(_ context.Context, ids []uuid.UUID) ([]models.UserProfile, error) {
			var out []models.UserProfile
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					out = append(out, p)
				}
			}
			return out, nil
		},
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.UserProfile, error) {
			if p, ok := byID[id]; ok {
				return &p, nil
			}
			return nil, errRecordNotFound()
		},
	}
}

// statsFrom serves lookups from a fixed set of stats rows.
func statsFrom(rows ...models.UserStats) *statsRepoStub {
	byID := make(map[uuid.UUID]models.UserStats, len(rows))
	for _, s := range rows {
		byID[s.UserID] = s
	}
	return &statsRepoStub{
		getByUserIDsFn: func(_ context.Context, ids []uuid.UUID) ([]models.UserStats, error) {
			var out []models.UserStats
			for _, id := range ids {
				if s, ok := byID[id]; ok {
					out = append(out, s)
				}
			}
			return out, nil
		},
		getByUserIDFn: func(_ context.Context, id uuid.UUID) (*models.UserStats, error) {
			if s, ok := byID[id]; ok {
				return &s, nil
			}
			return nil, errRecordNotFound()
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	isLikedFn       func(context.Context, models.SubjectKind, uuid.UUID, uuid.UUID) (bool, error)
	likeFn          func(context.Context, models.SubjectKind, uuid.UUID, uuid.UUID) error
	unlikeFn        func(context.Context, models.SubjectKind, uuid.UUID, uuid.UUID) error
	toggleFn        func(context.Context, models.SubjectKind, uuid.UUID, uuid.UUID) (bool, error)
	subjectAuthorFn func(context.Context, models.SubjectKind, uuid.UUID) (uuid.UUID, error)
}

func (s *likeRepoStub) IsLiked(ctx context.Context, k models.SubjectKind, subjectID, userID uuid.UUID) (bool, error) {
	return s.isLikedFn(ctx, k, subjectID, userID)
}
func (s *likeRepoStub) Like(ctx context.Context, k models.SubjectKind, subjectID, userID uuid.UUID) error {
	return s.likeFn(ctx, k, subjectID, userID)
}
func (s *likeRepoStub) Unlike(ctx context.Context, k models.SubjectKind, subjectID, userID uuid.UUID) error {
	return s.unlikeFn(ctx, k, subjectID, userID)
}
func (s *likeRepoStub) Toggle(ctx context.Context, k models.SubjectKind, subjectID, userID uuid.UUID) (bool, error) {
	return s.toggleFn(ctx, k, subjectID, userID)
}
func (s *likeRepoStub) SubjectAuthor(ctx context.Context, k models.SubjectKind, subjectID uuid.UUID) (uuid.UUID, error) {
	return s.subjectAuthorFn(ctx, k, subjectID)
}

// memoryLikes is an in-memory like set satisfying every likeRepoStub hook.
func memoryLikes(author uuid.UUID) *likeRepoStub {
	set := map[string]bool{}
	key := func(k models.SubjectKind, subjectID, userID uuid.UUID) string {
		return string(k) + ":" + subjectID.String() + ":" + userID.String()
	}
	return &likeRepoStub{
		isLikedFn: func(_ context.Context, k models.SubjectKind, s, u uuid.UUID) (bool, error) {
			return set[key(k, s, u)], nil
		},
		likeFn: func(_ context.Context, k models.SubjectKind, s, u uuid.UUID) error {
			set[key(k, s, u)] = true
			return nil
		},
		unlikeFn: func(_ context.Context, k models.SubjectKind, s, u uuid.UUID) error {
			delete(set, key(k, s, u))
			return nil
		},
		toggleFn: func(_ context.Context, k models.SubjectKind, s, u uuid.UUID) (bool, error) {
			kk := key(k, s, u)
			if set[kk] {
				delete(set, kk)
				return false, nil
			}
			set[kk] = true
			return true, nil
		},
		subjectAuthorFn: func(context.Context, models.SubjectKind, uuid.UUID) (uuid.UUID, error) {
			return author, nil
		},
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn      func(context.Context, *models.Notification) error
	listByUserFn  func(context.Context, uuid.UUID, int) ([]models.Notification, error)
	markReadFn    func(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error)
	markAllReadFn func(context.Context, uuid.UUID, time.Time) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	return s.listByUserFn(ctx, userID, limit)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (bool, error) {
	return s.markReadFn(ctx, id, userID, at)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return s.markAllReadFn(ctx, userID, at)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:     func(context.Context, *models.Notification) error { return nil },
		listByUserFn: func(context.Context, uuid.UUID, int) ([]models.Notification, error) { return nil, nil },
		markReadFn:   func(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error) { return true, nil },
		markAllReadFn: func(context.Context, uuid.UUID, time.Time) (int64, error) {
			return 0, nil
		},
	}
}

// publisherStub records published payloads.
type publisherStub struct {
	err      error
	userIDs  []uuid.UUID
	payloads []string
}

func (p *publisherStub) PublishUser(_ context.Context, userID uuid.UUID, payload string) error {
	p.userIDs = append(p.userIDs, userID)
	p.payloads = append(p.payloads, payload)
	return p.err
}

// senderStub records like notifications.
type senderStub struct {
	err   error
	calls []NotifyInput
}

func (s *senderStub) Notify(_ context.Context, in NotifyInput) (*models.Notification, error) {
	s.calls = append(s.calls, in)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Notification{UserID: in.RecipientID, ActorID: in.ActorID, Kind: in.Kind}, nil
}

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func strPtr(s string) *string { return &s }

func errRecordNotFound() error { return gorm.ErrRecordNotFound }

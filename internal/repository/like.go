package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boatlog/internal/models"
	"boatlog/internal/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// ErrDuplicateLike is returned when an insert races with another insert of the same like.
var ErrDuplicateLike = errors.New("like already exists")

// LikeRepository stores likes on posts and comments. A row's existence is the liked state.
type LikeRepository interface {
	IsLiked(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) (bool, error)
	Like(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) error
	Unlike(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) error
	Toggle(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) (bool, error)
	SubjectAuthor(ctx context.Context, kind models.SubjectKind, subjectID uuid.UUID) (uuid.UUID, error)
}

type likeRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, metrics: observability.NewDatabaseMetrics("likes")}
}

func (r *likeRepository) IsLiked(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) (bool, error) {
	target, err := models.LikeTargetFor(kind)
	if err != nil {
		return false, err
	}
	defer r.metrics.TrackQuery("is_liked")()

	var count int64
	if err := r.db.WithContext(ctx).
		Table(target.Table).
		Where(target.Column+" = ? AND user_id = ?", subjectID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Like inserts the like row. A concurrent duplicate is rejected by the unique key and reported as ErrDuplicateLike.
func (r *likeRepository) Like(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) error {
	target, err := models.LikeTargetFor(kind)
	if err != nil {
		return err
	}
	defer r.metrics.TrackQuery("like")()

	err = r.db.WithContext(ctx).Exec(
		fmt.Sprintf("INSERT INTO %s (%s, user_id, created_at) VALUES (?, ?, ?)", target.Table, target.Column),
		subjectID, userID, time.Now().UTC(),
	).Error
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateLike, err)
	}
	return err
}

// Unlike hard-deletes the like row.
func (r *likeRepository) Unlike(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) error {
	target, err := models.LikeTargetFor(kind)
	if err != nil {
		return err
	}
	defer r.metrics.TrackQuery("unlike")()

	return r.db.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND user_id = ?", target.Table, target.Column),
		subjectID, userID,
	).Error
}

// Toggle flips the like in one transaction and returns the new state. On Postgres the
// transaction holds an advisory lock on (kind, subject, user) so concurrent toggles by the
// same user serialize instead of both observing "not liked".
func (r *likeRepository) Toggle(ctx context.Context, kind models.SubjectKind, subjectID, userID uuid.UUID) (bool, error) {
	target, err := models.LikeTargetFor(kind)
	if err != nil {
		return false, err
	}
	defer r.metrics.TrackQuery("toggle")()
	ctx, span := observability.StartRepositorySpan(ctx, "toggle", target.Table)
	defer span.End()

	var liked bool
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			lockKey := fmt.Sprintf("like:%s:%s:%s", kind, subjectID, userID)
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
				return err
			}
		}

		removed := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND user_id = ?", target.Table, target.Column),
			subjectID, userID,
		)
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected > 0 {
			liked = false
			return nil
		}

		if err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (%s, user_id, created_at) VALUES (?, ?, ?) ON CONFLICT (%s, user_id) DO NOTHING",
				target.Table, target.Column, target.Column),
			subjectID, userID, time.Now().UTC(),
		).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return liked, nil
}

// SubjectAuthor returns the owner of the liked post or comment.
func (r *likeRepository) SubjectAuthor(ctx context.Context, kind models.SubjectKind, subjectID uuid.UUID) (uuid.UUID, error) {
	defer r.metrics.TrackQuery("subject_author")()

	switch kind {
	case models.SubjectPost:
		var post models.Post
		if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, "id = ?", subjectID).Error; err != nil {
			return uuid.Nil, err
		}
		return post.UserID, nil
	case models.SubjectComment:
		var comment models.Comment
		if err := r.db.WithContext(ctx).Select("id", "user_id").First(&comment, "id = ?", subjectID).Error; err != nil {
			return uuid.Nil, err
		}
		return comment.UserID, nil
	default:
		return uuid.Nil, fmt.Errorf("unknown like subject kind %q", kind)
	}
}

// IsUniqueViolation reports whether err is a unique-key violation from the gateway.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

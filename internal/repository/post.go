// Package repository provides the persistence gateway for forum data.
package repository

import (
	"context"
	"time"

	"boatlog/internal/models"
	"boatlog/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListPostsFilter narrows and windows a post listing.
type ListPostsFilter struct {
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context, filter ListPostsFilter) ([]*models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	UpdateOwned(ctx context.Context, id, userID uuid.UUID, updates map[string]interface{}) (bool, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	MarkRead(ctx context.Context, userID, postID uuid.UUID, at time.Time) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics("posts")}
}

// List returns posts pinned first, then newest first, windowed by offset and limit.
func (r *postRepository) List(ctx context.Context, filter ListPostsFilter) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list")()

	q := r.db.WithContext(ctx).Preload("Category")
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}

	var posts []*models.Post
	err := q.Order("is_pinned DESC").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	defer r.metrics.TrackQuery("get")()

	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Category").First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list_by_user")()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create")()
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateOwned applies updates only when the post belongs to userID. It reports whether a row matched.
func (r *postRepository) UpdateOwned(ctx context.Context, id, userID uuid.UUID, updates map[string]interface{}) (bool, error) {
	defer r.metrics.TrackQuery("update")()

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteOwned removes the post only when it belongs to userID. It reports whether a row matched.
func (r *postRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	defer r.metrics.TrackQuery("delete")()

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Post{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementViews bumps the view counter in a single statement.
func (r *postRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	defer r.metrics.TrackQuery("increment_views")()

	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// MarkRead upserts the caller's last-seen timestamp for a post.
func (r *postRepository) MarkRead(ctx context.Context, userID, postID uuid.UUID, at time.Time) error {
	defer r.metrics.TrackQuery("mark_read")()

	read := models.PostRead{UserID: userID, PostID: postID, LastSeenAt: at}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
	}).Create(&read).Error
}

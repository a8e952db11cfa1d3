package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"boatlog/internal/middleware"
	"boatlog/internal/models"
	"boatlog/internal/observability"
	"boatlog/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000

	// DefaultListLimit applies when a listing asks for no rows or a negative count.
	DefaultListLimit = 20
	// MaxListLimit caps a single listing page.
	MaxListLimit = 100
)

type PostService struct {
	postRepo repository.PostRepository
	joiner   *AuthorJoiner
	now      func() time.Time
}

type ListPostsInput struct {
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// window clamps the paging values: non-positive limits take the default, large ones are capped
// and negative offsets start at zero.
func (in ListPostsInput) window() (limit, offset int) {
	limit, offset = in.Limit, in.Offset
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type CreatePostInput struct {
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Title      string
	Content    string
}

// UpdatePostInput is a partial update; nil fields are left untouched.
type UpdatePostInput struct {
	PostID     uuid.UUID
	UserID     uuid.UUID
	Title      *string
	Content    *string
	CategoryID *uuid.UUID
}

type DeletePostInput struct {
	PostID uuid.UUID
	UserID uuid.UUID
}

func NewPostService(postRepo repository.PostRepository, joiner *AuthorJoiner) *PostService {
	return &PostService{
		postRepo: postRepo,
		joiner:   joiner,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListPosts returns enriched posts, pinned first then newest. Gateway failures yield an empty list.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) []models.EnrichedPost {
	limit, offset := in.window()
	posts, err := s.postRepo.List(ctx, repository.ListPostsFilter{
		CategoryID: in.CategoryID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		observability.ListingFailSoftTotal.WithLabelValues("posts").Inc()
		middleware.Logger.ErrorContext(ctx, "list posts failed", slog.String("error", err.Error()))
		return []models.EnrichedPost{}
	}
	return s.joiner.Join(ctx, posts)
}

// ListMyPosts returns the caller's posts with their category, newest first. Gateway failures yield an empty list.
func (s *PostService) ListMyPosts(ctx context.Context, userID uuid.UUID) []*models.Post {
	posts, err := s.postRepo.GetByUserID(ctx, userID)
	if err != nil {
		observability.ListingFailSoftTotal.WithLabelValues("my_posts").Inc()
		middleware.Logger.ErrorContext(ctx, "list own posts failed", slog.String("error", err.Error()))
		return []*models.Post{}
	}
	if posts == nil {
		return []*models.Post{}
	}
	return posts
}

// GetPost counts a view and returns the enriched post. The view increment never fails the read.
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*models.EnrichedPost, error) {
	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		middleware.Logger.WarnContext(ctx, "increment post views failed",
			slog.String("post_id", id.String()),
			slog.String("error", err.Error()),
		)
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	enriched := s.joiner.JoinOne(ctx, post)
	return &enriched, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" || in.CategoryID == uuid.Nil {
		return nil, models.NewValidationError("Missing required fields")
	}
	if err := validateLengths(title, content); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:     in.UserID,
		CategoryID: in.CategoryID,
		Title:      title,
		Content:    content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// UpdatePost applies the patch only if the caller owns the post; otherwise the post is reported missing.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Title == nil && in.Content == nil && in.CategoryID == nil {
		return nil, models.NewValidationError("No fields to update")
	}

	updates := make(map[string]interface{}, 3)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if err := validateLengths(title, ""); err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		if err := validateLengths("", content); err != nil {
			return nil, err
		}
		updates["content"] = content
	}
	if in.CategoryID != nil {
		if *in.CategoryID == uuid.Nil {
			return nil, models.NewValidationError("Category cannot be empty")
		}
		updates["category_id"] = *in.CategoryID
	}

	matched, err := s.postRepo.UpdateOwned(ctx, in.PostID, in.UserID, updates)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !matched {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	matched, err := s.postRepo.DeleteOwned(ctx, in.PostID, in.UserID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !matched {
		return models.NewNotFoundError("Post", in.PostID)
	}
	return nil
}

// MarkRead records that userID has seen postID now.
func (s *PostService) MarkRead(ctx context.Context, userID, postID uuid.UUID) error {
	if err := s.postRepo.MarkRead(ctx, userID, postID, s.now()); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func validateLengths(title, content string) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

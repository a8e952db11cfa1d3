package server

import (
	"log/slog"
	"strings"

	"boatlog/internal/middleware"
	"boatlog/internal/models"
	"boatlog/internal/observability"
	"boatlog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// UpdatePostRequest is the body of PATCH /api/posts/:id. Omitted fields are unchanged.
type UpdatePostRequest struct {
	CategoryID *string `json:"category_id,omitempty"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
}

// GetCategories handles GET /api/categories
// @Summary List categories
// @Description List every forum category ordered by name. Failures yield an empty list.
// @Tags forum
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.JSON(s.categoryService.ListCategories(c.UserContext()))
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Pinned posts first, then newest. Each post carries its author and author stats.
// @Description An unknown or malformed category yields an empty list.
// @Tags posts
// @Produce json
// @Param category_id query string false "Category UUID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} models.EnrichedPost
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	var categoryID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			observability.ListingFailSoftTotal.WithLabelValues("posts").Inc()
			middleware.Logger.WarnContext(c.UserContext(), "unparseable category filter",
				slog.String("category_id", raw))
			return c.JSON([]models.EnrichedPost{})
		}
		categoryID = &id
	}
	page := parsePagination(c)

	posts := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		CategoryID: categoryID,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	return c.JSON(posts)
}

// GetMyPosts handles GET /api/posts/my-posts
// @Summary List my posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/my-posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	return c.JSON(s.postService.ListMyPosts(c.UserContext(), userID))
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Returns the enriched post and counts one view.
// @Tags posts
// @Produce json
// @Param id path string true "Post UUID"
// @Success 200 {object} models.EnrichedPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "New post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var categoryID uuid.UUID
	if req.CategoryID != "" {
		categoryID, err = uuid.Parse(req.CategoryID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid category ID"))
		}
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
// @Summary Update own post
// @Description Only the author can update; anyone else gets 404.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post UUID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdatePostInput{
		PostID:  id,
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.CategoryID != nil {
		catID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid category ID"))
		}
		in.CategoryID = &catID
	}

	post, err := s.postService.UpdatePost(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete own post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post UUID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{PostID: id, UserID: userID}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkPostRead handles POST /api/posts/:id/mark-read
// @Summary Mark a post read
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post UUID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/{id}/mark-read [post]
func (s *Server) MarkPostRead(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.MarkRead(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

package server

import (
	"boatlog/internal/middleware"
	"boatlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle like on a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post UUID"
// @Success 200 {object} models.LikeResult
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.toggleLike(c, models.SubjectPost)
}

// LikeComment handles POST /api/comments/:id/like
// @Summary Toggle like on a comment
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment UUID"
// @Success 200 {object} models.LikeResult
// @Failure 401 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.toggleLike(c, models.SubjectComment)
}

func (s *Server) toggleLike(c *fiber.Ctx, kind models.SubjectKind) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.likeService.ToggleLike(c.UserContext(), kind, id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// GetUserStats handles GET /api/forum/user-stats?user_id=
// @Summary Get a user's reputation stats
// @Description Users without a stats row get zero counters and rank "Matros".
// @Tags forum
// @Produce json
// @Param user_id query string true "User UUID"
// @Success 200 {object} models.UserStats
// @Failure 400 {object} models.ErrorResponse
// @Router /forum/user-stats [get]
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	raw := c.Query("user_id")
	if raw == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	stats, err := s.statsService.GetUserStats(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetNotifications handles GET /api/notifications
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max notifications (default 50)"
// @Success 200 {array} models.Notification
// @Failure 401 {object} models.ErrorResponse
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}

	out, err := s.notificationService.List(c.UserContext(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification UUID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Failure 401 {object} models.ErrorResponse
// @Router /notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return nil
	}
	if err := s.notificationService.MarkAllRead(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// CheckURL handles GET /api/utils/check-url?url=
// @Summary Probe an outbound link
// @Tags utils
// @Produce json
// @Param url query string true "Absolute http(s) URL"
// @Success 200 {object} service.LinkStatus
// @Failure 400 {object} models.ErrorResponse
// @Router /utils/check-url [get]
func (s *Server) CheckURL(c *fiber.Ctx) error {
	out, err := s.linkChecker.CheckURL(c.UserContext(), c.Query("url"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetFeatureFlags returns configured feature flags and their state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := middleware.CallerID(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

package server

import (
	"context"
	"log/slog"

	"boatlog/internal/middleware"
	"boatlog/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// WebsocketHandler streams the caller's notifications over a websocket.
// @Summary Notification stream
// @Description Upgrade to a websocket delivering {"type":"notification","payload":...} messages.
// @Tags notifications
// @Param token query string false "Session token"
// @Failure 401 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uuid.UUID)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"Unauthorized"}`))
			_ = conn.Close()
			return
		}

		ctx, ok := conn.Locals("ctx").(context.Context)
		if !ok {
			ctx = context.Background()
		}
		_, span := observability.StartWebSocketSpan(ctx, "notifications", "connect")
		span.SetAttributes(attribute.String("user.id", userID.String()))
		defer span.End()

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Debug("websocket connected", slog.String("user_id", userID.String()))
		client.TrySend([]byte(`{"type":"connected","payload":{"user_id":"` + userID.String() + `"}}`))

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "Upgrade required"})
		}
		c.Locals("ctx", c.UserContext())
		return upgrade(c)
	}
}

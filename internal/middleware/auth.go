// Package middleware provides session, logging, tracing and rate limiting middleware.
package middleware

import (
	"errors"
	"strings"

	"boatlog/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var cfg *config.Config

var (
	errNoToken         = errors.New("no session token")
	errInvalidToken    = errors.New("invalid or expired token")
	errInvalidSubject  = errors.New("invalid token subject")
	errNotConfigured   = errors.New("session middleware not configured")
	unauthorizedAnswer = fiber.Map{"error": "Unauthorized"}
)

// InitMiddleware initializes session middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// sessionToken returns the raw token from the Authorization header or the session cookie.
func sessionToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cfg != nil && cfg.SessionCookie != "" {
		return c.Cookies(cfg.SessionCookie)
	}
	return ""
}

// ParseSessionToken validates an HS256 session token and returns the user ID in its subject.
func ParseSessionToken(tokenString string) (uuid.UUID, error) {
	if cfg == nil {
		return uuid.Nil, errNotConfigured
	}
	if tokenString == "" {
		return uuid.Nil, errNoToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, errInvalidSubject
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidSubject
	}
	return userID, nil
}

// AuthRequired rejects requests without a valid session and stores the caller's ID in locals.
func AuthRequired(c *fiber.Ctx) error {
	userID, err := ParseSessionToken(sessionToken(c))
	if err != nil {
		Logger.DebugContext(c.UserContext(), "session rejected", "reason", err.Error())
		return c.Status(fiber.StatusUnauthorized).JSON(unauthorizedAnswer)
	}
	setCaller(c, userID)
	return c.Next()
}

// AuthOptional resolves the caller when a valid session is present and never rejects.
func AuthOptional(c *fiber.Ctx) error {
	if userID, err := ParseSessionToken(sessionToken(c)); err == nil {
		setCaller(c, userID)
	}
	return c.Next()
}

// WebSocketAuthRequired accepts the token as a query parameter, since browsers cannot set headers on upgrades.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		token = sessionToken(c)
	}
	userID, err := ParseSessionToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(unauthorizedAnswer)
	}
	setCaller(c, userID)
	return c.Next()
}

// CallerID returns the authenticated user ID, if any.
func CallerID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals("userID").(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

func setCaller(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals("userID", userID)
	c.SetUserContext(withUserID(c.UserContext(), userID))
}

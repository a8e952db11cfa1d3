package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boatlog/internal/config"
	"boatlog/internal/database"
	"boatlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// MockPublisher is a mock of the service.Publisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishUser(ctx context.Context, userID uuid.UUID, payload string) error {
	args := m.Called(ctx, userID, payload)
	return args.Error(0)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newTestServer returns a server on a fresh gateway with Redis disabled.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	return newTestServerWithRedis(t, nil)
}

func newTestServerWithRedis(t *testing.T, rdb *redis.Client) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := openTestDB(t)
	cfg := &config.Config{
		Port:          "0",
		Env:           "test",
		JWTSecret:     testSecret,
		SessionCookie: "access_token",
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return s, s.App(), db
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// doJSON sends a request and returns the status and raw body. An empty token sends no session.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug, Icon: "anchor"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedProfile(t *testing.T, db *gorm.DB, email string) models.UserProfile {
	t.Helper()
	p := models.UserProfile{ID: uuid.New(), Email: email}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedPost(t *testing.T, db *gorm.DB, userID, categoryID uuid.UUID, title string, pinned bool, createdAt time.Time) models.Post {
	t.Helper()
	p := models.Post{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		Content:    "content of " + title,
		IsPinned:   pinned,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func decodeBody(resp *http.Response, v interface{}) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

package repository

import (
	"context"
	"testing"
	"time"

	"boatlog/internal/database"
	"boatlog/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a postgres-dialect gorm handle backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory gateway. One connection keeps the memory database shared.
func setupSQLiteDB(t *testing.T) *gorm.DB {
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

func seedCategory(t *testing.T, db *gorm.DB, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: slug, Slug: slug, Icon: "anchor"}
	require.NoError(t, db.Create(&c).Error)
	return c
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

func ctxT() context.Context {
	return context.Background()
}

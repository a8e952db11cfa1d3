//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"boatlog/internal/config"
	"boatlog/internal/database"
	"boatlog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "boatlog",
			"POSTGRES_PASSWORD": "boatlog",
			"POSTGRES_DB":       "boatlog",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		Env:          "test",
		DatabaseURL:  fmt.Sprintf("postgres://boatlog:boatlog@%s:%s/boatlog?sslmode=disable", host, port.Port()),
		DBSchemaMode: database.SchemaModeSQL,
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	return db
}

func TestPostgres_ConcurrentTogglesSerialize(t *testing.T) {
	db := startPostgres(t)
	repo := NewLikeRepository(db)

	cat := models.Category{Name: "Motor", Slug: "motor"}
	require.NoError(t, db.Create(&cat).Error)
	post := models.Post{UserID: uuid.New(), CategoryID: cat.ID, Title: "t", Content: "c"}
	require.NoError(t, db.Create(&post).Error)
	user := uuid.New()

	const toggles = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		likedN  int
		firstEr error
	)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			liked, err := repo.Toggle(context.Background(), models.SubjectPost, post.ID, user)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstEr == nil {
				firstEr = err
			}
			if liked {
				likedN++
			}
		}()
	}
	wg.Wait()

	require.NoError(t, firstEr)
	assert.Equal(t, toggles/2, likedN, "serialized toggles alternate")

	liked, err := repo.IsLiked(context.Background(), models.SubjectPost, post.ID, user)
	require.NoError(t, err)
	assert.False(t, liked, "an even number of toggles ends unliked")
}

func TestPostgres_LegacyLikeRejectsDuplicate(t *testing.T) {
	db := startPostgres(t)
	repo := NewLikeRepository(db)

	cat := models.Category{Name: "Seil", Slug: "seil"}
	require.NoError(t, db.Create(&cat).Error)
	post := models.Post{UserID: uuid.New(), CategoryID: cat.ID, Title: "t", Content: "c"}
	require.NoError(t, db.Create(&post).Error)
	user := uuid.New()

	require.NoError(t, repo.Like(context.Background(), models.SubjectPost, post.ID, user))
	err := repo.Like(context.Background(), models.SubjectPost, post.ID, user)
	assert.ErrorIs(t, err, ErrDuplicateLike)
}

func TestPostgres_ViewsAndReads(t *testing.T) {
	db := startPostgres(t)
	posts := NewPostRepository(db)

	cat := models.Category{Name: "Elektro", Slug: "elektro"}
	require.NoError(t, db.Create(&cat).Error)
	post := &models.Post{UserID: uuid.New(), CategoryID: cat.ID, Title: "Batteri", Content: "AGM eller litium?"}
	require.NoError(t, posts.Create(context.Background(), post))

	require.NoError(t, posts.IncrementViews(context.Background(), post.ID))
	require.NoError(t, posts.MarkRead(context.Background(), uuid.New(), post.ID, time.Now().UTC()))

	got, err := posts.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
}

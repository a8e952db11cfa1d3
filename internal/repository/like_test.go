package repository

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"boatlog/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLikeRepository_ToggleAlternates(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	cat := seedCategory(t, db, "motor")
	post := seedPost(t, db, uuid.New(), cat.ID, "Likeable", false, time.Now().UTC())
	user := uuid.New()

	for i, want := range []bool{true, false, true, false} {
		liked, err := repo.Toggle(ctxT(), models.SubjectPost, post.ID, user)
		require.NoError(t, err)
		assert.Equal(t, want, liked, "toggle %d", i+1)

		isLiked, err := repo.IsLiked(ctxT(), models.SubjectPost, post.ID, user)
		require.NoError(t, err)
		assert.Equal(t, want, isLiked)
	}
}

func TestLikeRepository_ToggleComment(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	cat := seedCategory(t, db, "motor")
	post := seedPost(t, db, uuid.New(), cat.ID, "Thread", false, time.Now().UTC())
	comment := models.Comment{PostID: post.ID, UserID: uuid.New(), Content: "Agreed"}
	require.NoError(t, db.Create(&comment).Error)
	user := uuid.New()

	liked, err := repo.Toggle(ctxT(), models.SubjectComment, comment.ID, user)
	require.NoError(t, err)
	assert.True(t, liked)

	var count int64
	require.NoError(t, db.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A like on the comment must not leak into post likes.
	postLiked, err := repo.IsLiked(ctxT(), models.SubjectPost, comment.ID, user)
	require.NoError(t, err)
	assert.False(t, postLiked)
}

func TestLikeRepository_LikeUnlikeLegacy(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	subject := uuid.New()
	user := uuid.New()

	require.NoError(t, repo.Like(ctxT(), models.SubjectPost, subject, user))

	// The second insert is rejected by the pair's key.
	require.Error(t, repo.Like(ctxT(), models.SubjectPost, subject, user))

	require.NoError(t, repo.Unlike(ctxT(), models.SubjectPost, subject, user))
	liked, err := repo.IsLiked(ctxT(), models.SubjectPost, subject, user)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeRepository_UnknownKind(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)

	_, err := repo.Toggle(ctxT(), models.SubjectKind("reply"), uuid.New(), uuid.New())
	assert.Error(t, err)
	_, err = repo.SubjectAuthor(ctxT(), models.SubjectKind("reply"), uuid.New())
	assert.Error(t, err)
}

func TestLikeRepository_SubjectAuthor(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	cat := seedCategory(t, db, "motor")
	author := uuid.New()
	post := seedPost(t, db, author, cat.ID, "Mine", false, time.Now().UTC())
	commenter := uuid.New()
	comment := models.Comment{PostID: post.ID, UserID: commenter, Content: "hi"}
	require.NoError(t, db.Create(&comment).Error)

	got, err := repo.SubjectAuthor(ctxT(), models.SubjectPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, author, got)

	got, err = repo.SubjectAuthor(ctxT(), models.SubjectComment, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, commenter, got)

	_, err = repo.SubjectAuthor(ctxT(), models.SubjectPost, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLikeRepository_ToggleTakesAdvisoryLockOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)
	subject := uuid.New()
	user := uuid.New()
	lockKey := fmt.Sprintf("like:post:%s:%s", subject, user)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs(lockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`)).
		WithArgs(subject, user).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (post_id, user_id) DO NOTHING`)).
		WithArgs(subject, user, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err := repo.Toggle(ctxT(), models.SubjectPost, subject, user)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_ToggleUnlikesOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)
	subject := uuid.New()
	user := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`)).
		WithArgs(subject, user).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err := repo.Toggle(ctxT(), models.SubjectComment, subject, user)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_ToggleRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock`)).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.Toggle(ctxT(), models.SubjectPost, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_LikeDuplicateOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3)`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Like(ctxT(), models.SubjectPost, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateLike)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)))
}

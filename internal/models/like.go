package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubjectKind identifies what a like points at.
type SubjectKind string

const (
	SubjectPost    SubjectKind = "post"
	SubjectComment SubjectKind = "comment"
)

// Valid reports whether k is a known subject kind.
func (k SubjectKind) Valid() bool {
	return k == SubjectPost || k == SubjectComment
}

// PostLike is a user's like on a post. The row's existence is the liked state.
type PostLike struct {
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike is a user's like on a comment.
type CommentLike struct {
	CommentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"comment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeTarget names the table and subject column backing likes of a kind.
type LikeTarget struct {
	Table  string
	Column string
}

// LikeTargetFor returns the storage target for k.
func LikeTargetFor(k SubjectKind) (LikeTarget, error) {
	switch k {
	case SubjectPost:
		return LikeTarget{Table: "post_likes", Column: "post_id"}, nil
	case SubjectComment:
		return LikeTarget{Table: "comment_likes", Column: "comment_id"}, nil
	default:
		return LikeTarget{}, fmt.Errorf("unknown like subject kind %q", k)
	}
}

// LikeResult is the response of a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
}

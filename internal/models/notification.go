package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationKind describes what happened.
type NotificationKind string

const (
	NotificationPostLiked    NotificationKind = "post_liked"
	NotificationCommentLiked NotificationKind = "comment_liked"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID   uuid.UUID        `gorm:"type:uuid;not null" json:"actor_id"`
	Kind      NotificationKind `gorm:"not null" json:"kind"`
	PostID    *uuid.UUID       `gorm:"type:uuid" json:"post_id,omitempty"`
	CommentID *uuid.UUID       `gorm:"type:uuid" json:"comment_id,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns an ID when the caller did not provide one.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

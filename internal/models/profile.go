package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRank is the rank of a user without accumulated points.
const DefaultRank = "Matros"

// UnknownAuthorEmail is shown when a post's author has no profile row.
const UnknownAuthorEmail = "Unknown"

// UserProfile is owned by the identity subsystem and read-only here.
type UserProfile struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string     `gorm:"not null" json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// TableName maps UserProfile onto the gateway's profiles table.
func (UserProfile) TableName() string {
	return "profiles"
}

// PlaceholderProfile stands in for a missing author profile.
func PlaceholderProfile(userID uuid.UUID) UserProfile {
	return UserProfile{ID: userID, Email: UnknownAuthorEmail}
}

// UserStats holds a user's reputation counters.
type UserStats struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Points        int        `gorm:"not null;default:0" json:"points"`
	Rank          string     `gorm:"not null;default:'Matros'" json:"rank"`
	PostsCount    int        `gorm:"not null;default:0" json:"posts_count"`
	CommentsCount int        `gorm:"not null;default:0" json:"comments_count"`
	LikesReceived int        `gorm:"not null;default:0" json:"likes_received"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// DefaultUserStats is the zero-value record for a user without a stats row. It is never persisted.
func DefaultUserStats(userID uuid.UUID) UserStats {
	return UserStats{UserID: userID, Rank: DefaultRank}
}

type rankStep struct {
	minPoints int
	label     string
}

// ranks is ordered by descending threshold.
var ranks = []rankStep{
	{2500, "Admiral"},
	{1000, "Kaptein"},
	{400, "Skipper"},
	{150, "Styrmann"},
	{50, "Båtsmann"},
	{0, DefaultRank},
}

// RankForPoints returns the rank label earned by points.
func RankForPoints(points int) string {
	for _, r := range ranks {
		if points >= r.minPoints {
			return r.label
		}
	}
	return DefaultRank
}

package models

import (
	"time"
)

// The fixed reaction vocabulary. A user may hold several reactions of
// different types on one post, never two of the same type.
const (
	ReactionLike      = "like"
	ReactionLove      = "love"
	ReactionDelicious = "delicious"
	ReactionWow       = "wow"
	ReactionDrool     = "drool"
)

var reactionTypes = map[string]bool{
	ReactionLike:      true,
	ReactionLove:      true,
	ReactionDelicious: true,
	ReactionWow:       true,
	ReactionDrool:     true,
}

func ValidReactionType(t string) bool {
	return reactionTypes[t]
}

type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_post_user_type" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_post_user_type" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type      string    `gorm:"column:reaction_type;size:20;not null;uniqueIndex:idx_post_user_type" json:"reaction_type"`
	CreatedAt time.Time `json:"created_at"`
}

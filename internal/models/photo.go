package models

import (
	"time"
)

// Photo belongs to exactly one Post; lifetime is bound to the parent.
type Photo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	URL         string    `gorm:"not null" json:"url"`
	PhotoOrder  int       `gorm:"not null;default:0" json:"photo_order"` // 0-based display order
	Description string    `json:"description"`
	Rating      *int      `json:"rating"`
	IsLandscape bool      `json:"is_landscape"` // capture orientation
	CreatedAt   time.Time `json:"created_at"`
}

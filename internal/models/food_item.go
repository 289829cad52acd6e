package models

import (
	"time"
)

// FoodItem is one itemized entry on a post (a dish, a dessert, a drink).
type FoodItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Price     *float64  `json:"price"`
	Rating    *int      `json:"rating"` // bounded by the post's rating scale
	ItemOrder int       `gorm:"not null;default:0" json:"item_order"`
	CreatedAt time.Time `json:"created_at"`
}

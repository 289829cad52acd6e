package models

import (
	"time"
)

// Rating scales a post can opt into. Photo and food item ratings are
// bounded by the post's active scale.
const (
	RatingType3Star  = "3_star"
	RatingType5Star  = "5_star"
	RatingType10Star = "10_star"
)

var ratingScaleMax = map[string]int{
	RatingType3Star:  3,
	RatingType5Star:  5,
	RatingType10Star: 10,
}

// ValidRatingType reports whether t is one of the three enumerated scales.
func ValidRatingType(t string) bool {
	_, ok := ratingScaleMax[t]
	return ok
}

// ScaleMax returns the upper rating bound for a scale, 0 for unknown scales.
func ScaleMax(t string) int {
	return ratingScaleMax[t]
}

type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Caption      string    `gorm:"type:text;not null" json:"caption"`
	Location     string    `json:"location"`
	FoodCategory string    `gorm:"size:50" json:"food_category"`
	RatingType   string    `gorm:"size:10" json:"rating_type"`
	Rating       *int      `json:"rating"`
	IsPublic     bool      `gorm:"default:true" json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Photos    []Photo    `gorm:"constraint:OnDelete:CASCADE;" json:"photos"`
	FoodItems []FoodItem `gorm:"constraint:OnDelete:CASCADE;" json:"food_items,omitempty"`

	// 非数据库字段，查询时填充
	Owner         *Profile `gorm:"-" json:"user,omitempty"`
	PhotoCount    int      `gorm:"-" json:"photo_count"`
	ReactionCount int      `gorm:"-" json:"reaction_count"`
	CommentCount  int      `gorm:"-" json:"comment_count"`
}

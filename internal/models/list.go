package models

import (
	"time"
)

// List 用户自建的帖子合集，私有列表只有所有者可见
type List struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CoverURL    string    `json:"cover_url"`
	IsPublic    bool      `gorm:"default:true" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []ListItem `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	// 非数据库字段，查询时填充
	Owner     *Profile `gorm:"-" json:"user,omitempty"`
	PostCount int      `gorm:"-" json:"post_count"`
}

// ListItem joins a List and a Post. A post may only appear once per list;
// item_order drives display sequencing and duplicates are tolerated (the
// tie-break among equal orders follows retrieval order).
type ListItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListID    uint      `gorm:"not null;index;uniqueIndex:idx_list_post" json:"list_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_list_post" json:"post_id"`
	ItemOrder int       `gorm:"not null;default:0" json:"item_order"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
}

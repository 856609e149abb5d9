package models

import (
	"time"
)

// Bookmark marks a post saved by a user. One bookmark per (user, post);
// bookmarking your own post is allowed and there is no trust gating.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_user_post" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

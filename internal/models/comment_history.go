package models

import (
	"time"
)

// CommentHistory mirrors PostHistory for comments; only the content is
// editable so only the content is snapshotted.
type CommentHistory struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	OriginalCommentID uint      `gorm:"not null;index" json:"-"`
	OriginalComment   Comment   `gorm:"foreignKey:OriginalCommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID          *uint     `json:"author_id"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	LastEditedAt      time.Time `gorm:"index;not null" json:"last_edited_at"`
}

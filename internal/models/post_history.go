package models

import (
	"time"
)

// PostHistory is an immutable snapshot of a post's editable fields taken
// just before an edit is applied. Rows are never updated; they cascade
// away with the original post.
type PostHistory struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	OriginalPostID uint      `gorm:"not null;index" json:"-"`
	OriginalPost   Post      `gorm:"foreignKey:OriginalPostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID       *uint     `json:"author_id"`
	Title          string    `gorm:"not null" json:"title"`
	URL            string    `json:"url"`
	Content        string    `gorm:"type:text" json:"content"`
	Category       string    `gorm:"size:20;not null" json:"category"`
	LastEditedAt   time.Time `gorm:"index;not null" json:"last_edited_at"`
}

package models

import (
	"time"
)

type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"-"`
	Cid      string   `gorm:"uniqueIndex;size:12;not null" json:"cid"`
	PostID   uint     `gorm:"not null;index" json:"-"`
	Post     Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentID *uint    `gorm:"index" json:"parent_id"` // nil for top-level comments
	Parent   *Comment `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID *uint    `gorm:"index" json:"author_id"`
	Author   *User    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"author,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	DeletedAt     *time.Time `gorm:"index" json:"deleted_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at"`

	// Filled by queries, not stored.
	ReplyCount int `gorm:"-" json:"reply_count"`
	VoteSum    int `gorm:"-" json:"vote_sum"`
	UserVote   int `gorm:"-" json:"user_vote,omitempty"`
}

func (c *Comment) ItemAuthorID() *uint { return c.AuthorID }
func (c *Comment) ItemCreatedAt() time.Time { return c.CreatedAt }
func (c *Comment) ItemDeletedAt() *time.Time { return c.DeletedAt }

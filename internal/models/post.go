package models

import (
	"time"
)

const (
	CategoryGeneral = "general"
	CategoryAsk     = "ask"
	CategoryShow    = "show"
)

// Categories lists the valid post categories.
var Categories = []string{CategoryGeneral, CategoryAsk, CategoryShow}

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Pid      string `gorm:"uniqueIndex;size:12;not null" json:"pid"`
	AuthorID *uint  `gorm:"index" json:"author_id"` // nil once the author account is deleted
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"author,omitempty"`

	Title    string `gorm:"not null" json:"title"`
	URL      string `gorm:"size:1000" json:"url"`
	Content  string `gorm:"type:text" json:"content"`
	Category string `gorm:"size:20;index;not null" json:"category"`

	// Decayed ranking value, distinct from the raw vote sum. Rewritten in
	// bulk by the decay engine; primary sort key for the popular listing.
	Score int `gorm:"default:0;not null;index" json:"score"`

	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	DeletedAt     *time.Time `gorm:"index" json:"deleted_at"` // tombstone, not a gorm soft-delete
	LastUpdatedAt *time.Time `json:"last_updated_at"`

	// Filled by list/detail queries, not stored.
	CommentCount  int  `gorm:"-" json:"comment_count"`
	BookmarkCount int  `gorm:"-" json:"bookmark_count"`
	VoteSum       int  `gorm:"-" json:"vote_sum"`
	UserVote      int  `gorm:"-" json:"user_vote,omitempty"`
	Bookmarked    bool `gorm:"-" json:"bookmarked,omitempty"`
}

func (p *Post) ItemAuthorID() *uint { return p.AuthorID }
func (p *Post) ItemCreatedAt() time.Time { return p.CreatedAt }
func (p *Post) ItemDeletedAt() *time.Time { return p.DeletedAt }

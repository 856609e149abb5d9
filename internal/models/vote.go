package models

import (
	"time"
)

// Vote is one user's +1/-1 on a post or a comment. Exactly one of PostID
// and CommentID is set. The composite unique indexes are the authoritative
// one-vote-per-item guard: Postgres treats NULLs as distinct, so post votes
// collide only on (user_id, post_id) and comment votes only on
// (user_id, comment_id). A duplicate-key error from an insert means
// "already voted".
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_vote_user_post;uniqueIndex:idx_vote_user_comment" json:"user_id"`
	PostID    *uint     `gorm:"index;uniqueIndex:idx_vote_user_post" json:"post_id"`
	CommentID *uint     `gorm:"index;uniqueIndex:idx_vote_user_comment" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"
)

// ScoreLog is the ledger's audit trail: one row per applied karma delta.
// A user's score always equals the sum of their deltas.
type ScoreLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Delta     int       `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"size:100;not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"
)

// DeletedEmail records an account deletion so the same address cannot
// re-register until a cooldown elapses. Stored lowercased.
type DeletedEmail struct {
	Email         string    `gorm:"primaryKey;size:255" json:"email"`
	DeleteCount   int       `gorm:"default:1;not null" json:"delete_count"`
	LastDeletedAt time.Time `gorm:"not null" json:"last_deleted_at"`
}

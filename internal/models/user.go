package models

import (
	"time"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username *string `gorm:"uniqueIndex" json:"username"` // nil until registration completes
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password string  `gorm:"not null" json:"-"` // bcrypt hash
	Name     string  `gorm:"size:40" json:"name"`
	Bio      string  `gorm:"size:160" json:"bio"`

	// Karma. Mutated only through the score ledger's atomic increment;
	// may go negative.
	Score int `gorm:"default:0;not null" json:"score"`

	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   time.Time  `json:"last_login_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at"`
}

// IsRegistered reports whether the account has claimed a username.
// Username-less identities may not perform any mutating action except
// registration itself.
func (u *User) IsRegistered() bool {
	return u.Username != nil && *u.Username != ""
}

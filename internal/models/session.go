package models

import "time"

// Session backs one issued access token (its jti), so logout can revoke it.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // uuid
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time
}

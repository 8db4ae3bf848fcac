package models

import "time"

// User represents an application user. Email is unique and stored lower-cased.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	Currency     string    `gorm:"size:3;not null" json:"currency"`
	Timezone     string    `gorm:"size:50" json:"timezone"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	LastLogin           *time.Time `json:"last_login,omitempty"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"` // consecutive failures
	LockedUntil         *time.Time `gorm:"index" json:"-"`
}

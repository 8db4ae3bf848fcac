package models

import "time"

// Tag is a free-form label attached to transactions.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Color     *string   `gorm:"size:7" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. IsCompleted follows CurrentAmount >= TargetAmount.
type Goal struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   *string         `gorm:"type:text" json:"description"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"current_amount"`
	Deadline      *Date           `gorm:"index" json:"deadline"`
	Priority      int             `gorm:"not null" json:"priority"`
	IsCompleted   bool            `gorm:"not null" json:"is_completed"`
	CompletedAt   *time.Time      `json:"completed_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents an income/expense category, optionally nested under a
// parent of the same owner.
type Category struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"index;not null" json:"user_id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Type        CategoryType     `gorm:"size:16;index;not null" json:"type"` // income / expense
	ParentID    *uint            `gorm:"index" json:"parent_id"`
	BudgetLimit *decimal.Decimal `gorm:"type:numeric(15,2)" json:"budget_limit"`
	Icon        *string          `gorm:"size:50" json:"icon"`
	Color       *string          `gorm:"size:7" json:"color"`
	IsActive    bool             `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

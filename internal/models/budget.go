package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index;not null" json:"user_id"`
	CategoryID *uint           `gorm:"index" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"size:8;not null" json:"period"`
	StartDate  Date            `gorm:"not null" json:"start_date"`
	EndDate    *Date           `json:"end_date"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

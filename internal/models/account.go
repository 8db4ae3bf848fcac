package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a place money lives. Balance is maintained by the owner, never
// derived from transactions.
type Account struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Type          AccountType     `gorm:"size:20;not null" json:"type"`
	Balance       decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"balance"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	BankName      *string         `gorm:"size:255" json:"bank_name"`
	AccountNumber *string         `gorm:"size:50" json:"account_number"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

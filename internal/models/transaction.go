package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one movement of money on an account. Amount is always
// positive; direction is carried by Type.
type Transaction struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	AccountID              uint            `gorm:"index;not null" json:"account_id"`
	CategoryID             *uint           `gorm:"index" json:"category_id"`
	Amount                 decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"amount"`
	Type                   TransactionType `gorm:"size:16;index:idx_transactions_date_type,priority:2;not null" json:"type"`
	Date                   Date            `gorm:"index:idx_transactions_date_type,priority:1;not null" json:"date"`
	Description            *string         `gorm:"type:text" json:"description"`
	Payee                  *string         `gorm:"size:255" json:"payee"`
	Location               *string         `gorm:"size:255" json:"location"`
	IsRecurring            bool            `gorm:"not null" json:"is_recurring"`
	RecurringTransactionID *uint           `json:"recurring_transaction_id"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`

	Tags []Tag `gorm:"many2many:transaction_tags" json:"tags"`
}

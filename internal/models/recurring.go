package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTransaction is a template that materializes into a Transaction on
// NextDate, then moves NextDate forward by one Interval.
type RecurringTransaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"index;not null" json:"user_id"`
	AccountID   uint              `gorm:"index;not null" json:"account_id"`
	CategoryID  *uint             `gorm:"index" json:"category_id"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"amount"`
	Type        TransactionType   `gorm:"size:16;not null" json:"type"`
	Interval    RecurringInterval `gorm:"size:8;not null" json:"interval"`
	NextDate    Date              `gorm:"index;not null" json:"next_date"`
	EndDate     *Date             `json:"end_date"`
	IsActive    bool              `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Eligible reports whether the template may produce a transaction dated NextDate.
func (r RecurringTransaction) Eligible() bool {
	if !r.IsActive {
		return false
	}
	return r.EndDate == nil || !r.NextDate.After(*r.EndDate)
}

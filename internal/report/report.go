// Package report is the read-only reporting facade. Aggregates are computed
// by postgres functions; this package only binds arguments and scans rows.
package report

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrUnavailable is returned on databases without the report functions.
	ErrUnavailable = errors.New("reports require a postgres database")
	ErrNotFound    = errors.New("not found")
)

//go:embed functions.sql
var functionsSQL string

type FinancialRow struct {
	CategoryName     string          `json:"category_name"`
	CategoryType     string          `json:"category_type"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	TransactionCount int64           `json:"transaction_count"`
	AvgAmount        decimal.Decimal `json:"avg_amount"`
}

type TopExpenseRow struct {
	CategoryID       uint            `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int64           `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

type BudgetStatusRow struct {
	BudgetID       uint            `json:"budget_id"`
	CategoryName   string          `json:"category_name"`
	BudgetAmount   decimal.Decimal `json:"budget_amount"`
	SpentAmount    decimal.Decimal `json:"spent_amount"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	IsExceeded     bool            `json:"is_exceeded"`
}

// Reporter is what the HTTP layer needs from reporting.
type Reporter interface {
	FinancialReport(ctx context.Context, owner uint, start, end models.Date) ([]FinancialRow, error)
	TopExpenses(ctx context.Context, owner uint, limit int, start, end *models.Date) ([]TopExpenseRow, error)
	BudgetStatus(ctx context.Context, owner uint, year, month int) ([]BudgetStatusRow, error)
	GoalProgress(ctx context.Context, owner, goalID uint) (decimal.Decimal, error)
	TotalBalance(ctx context.Context, owner uint) (decimal.Decimal, error)
}

// SQLReporter calls the database functions through gorm raw queries.
type SQLReporter struct {
	db *gorm.DB
}

func NewSQLReporter(db *gorm.DB) *SQLReporter {
	return &SQLReporter{db: db}
}

// Install creates or replaces the report functions. It is a no-op outside
// postgres.
func Install(ctx context.Context, db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.WithContext(ctx).Exec(functionsSQL).Error; err != nil {
		return fmt.Errorf("install report functions: %w", err)
	}
	return nil
}

func (r *SQLReporter) ready() error {
	if r.db.Dialector.Name() != "postgres" {
		return ErrUnavailable
	}
	return nil
}

func (r *SQLReporter) FinancialReport(ctx context.Context, owner uint, start, end models.Date) ([]FinancialRow, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows := make([]FinancialRow, 0)
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_user_financial_report(?, ?, ?)", owner, start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("financial report: %w", err)
	}
	return rows, nil
}

func (r *SQLReporter) TopExpenses(ctx context.Context, owner uint, limit int, start, end *models.Date) ([]TopExpenseRow, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows := make([]TopExpenseRow, 0)
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_top_expense_categories(?, ?, ?, ?)", owner, limit, start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top expenses: %w", err)
	}
	return rows, nil
}

func (r *SQLReporter) BudgetStatus(ctx context.Context, owner uint, year, month int) ([]BudgetStatusRow, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows := make([]BudgetStatusRow, 0)
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_budget_status_report(?, ?, ?)", owner, year, month).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}
	return rows, nil
}

// GoalProgress returns the completion percentage of an owned goal.
func (r *SQLReporter) GoalProgress(ctx context.Context, owner, goalID uint) (decimal.Decimal, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Goal{}).Where("id = ? AND user_id = ?", goalID, owner).Count(&n).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("check goal: %w", err)
	}
	if n == 0 {
		return decimal.Zero, ErrNotFound
	}
	if err := r.ready(); err != nil {
		return decimal.Zero, err
	}

	var out struct{ Progress decimal.NullDecimal }
	err = r.db.WithContext(ctx).Raw("SELECT get_goal_progress(?) AS progress", goalID).Scan(&out).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("goal progress: %w", err)
	}
	return out.Progress.Decimal, nil
}

func (r *SQLReporter) TotalBalance(ctx context.Context, owner uint) (decimal.Decimal, error) {
	if err := r.ready(); err != nil {
		return decimal.Zero, err
	}
	var out struct{ TotalBalance decimal.NullDecimal }
	err := r.db.WithContext(ctx).Raw("SELECT get_user_total_balance(?) AS total_balance", owner).Scan(&out).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("total balance: %w", err)
	}
	return out.TotalBalance.Decimal, nil
}

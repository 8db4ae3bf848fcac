package store

import (
	"context"
	"fmt"
	"strings"

	"finflow/internal/models"
	"finflow/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecurringInput struct {
	AccountID   uint                     `json:"account_id"`
	CategoryID  *uint                    `json:"category_id"`
	Description string                   `json:"description"`
	Amount      decimal.Decimal          `json:"amount"`
	Type        models.TransactionType   `json:"type"`
	Interval    models.RecurringInterval `json:"interval"`
	NextDate    models.Date              `json:"next_date"`
	EndDate     *models.Date             `json:"end_date"`
}

type RecurringPatch struct {
	AccountID   Optional[uint]                     `json:"account_id"`
	CategoryID  Optional[uint]                     `json:"category_id"`
	Description Optional[string]                   `json:"description"`
	Amount      Optional[decimal.Decimal]          `json:"amount"`
	Type        Optional[models.TransactionType]   `json:"type"`
	Interval    Optional[models.RecurringInterval] `json:"interval"`
	NextDate    Optional[models.Date]              `json:"next_date"`
	EndDate     Optional[models.Date]              `json:"end_date"`
	IsActive    Optional[bool]                     `json:"is_active"`
}

// RecurringStore manages recurring templates. Templates never post on their
// own; Materialize is the single projection step.
type RecurringStore struct {
	scoped[models.RecurringTransaction]
	accounts   *AccountStore
	categories *CategoryStore
}

func (s *RecurringStore) List(ctx context.Context, owner uint, p Page) ([]models.RecurringTransaction, error) {
	return s.list(ctx, owner, p)
}

func (s *RecurringStore) Get(ctx context.Context, owner, id uint) (*models.RecurringTransaction, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *RecurringStore) Create(ctx context.Context, owner uint, in RecurringInput) (*models.RecurringTransaction, error) {
	r := &models.RecurringTransaction{
		UserID:      owner,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		Interval:    in.Interval,
		NextDate:    in.NextDate,
		EndDate:     in.EndDate,
		IsActive:    true,
	}
	if err := s.checkRefs(ctx, s.db, owner, r); err != nil {
		return nil, err
	}
	if err := validateRecurring(r, true); err != nil {
		return nil, err
	}
	if err := s.create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecurringStore) Update(ctx context.Context, owner, id uint, p RecurringPatch) (*models.RecurringTransaction, error) {
	r, err := s.get(ctx, s.db, owner, id)
	if err != nil {
		return nil, err
	}

	if err := assign("account_id", &r.AccountID, p.AccountID); err != nil {
		return nil, err
	}
	if err := assign("description", &r.Description, p.Description); err != nil {
		return nil, err
	}
	if err := assign("amount", &r.Amount, p.Amount); err != nil {
		return nil, err
	}
	if err := assign("type", &r.Type, p.Type); err != nil {
		return nil, err
	}
	if err := assign("interval", &r.Interval, p.Interval); err != nil {
		return nil, err
	}
	if err := assign("next_date", &r.NextDate, p.NextDate); err != nil {
		return nil, err
	}
	if err := assign("is_active", &r.IsActive, p.IsActive); err != nil {
		return nil, err
	}
	assignPtr(&r.CategoryID, p.CategoryID)
	assignPtr(&r.EndDate, p.EndDate)

	r.Description = strings.TrimSpace(r.Description)
	if p.AccountID.Present() || p.CategoryID.Present() {
		if err := s.checkRefs(ctx, s.db, owner, r); err != nil {
			return nil, err
		}
	}
	// a template that ran past its end keeps next_date > end_date, so the
	// window is only enforced when one of its bounds changes
	if err := validateRecurring(r, p.NextDate.Set || p.EndDate.Set); err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.db, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the template; transactions it produced stay.
func (s *RecurringStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

// Materialize posts the template's next occurrence and advances next_date by
// one interval. A template whose next_date passes end_date is deactivated.
func (s *RecurringStore) Materialize(ctx context.Context, owner, id uint) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.get(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), owner, id)
		if err != nil {
			return err
		}
		if !r.IsActive {
			return invalidf("is_active", "recurring transaction is inactive")
		}
		if !r.Eligible() {
			return invalidf("next_date", "next_date %s is past end_date %s", r.NextDate, r.EndDate)
		}

		desc := r.Description
		templateID := r.ID
		txn = &models.Transaction{
			AccountID:              r.AccountID,
			CategoryID:             r.CategoryID,
			Amount:                 r.Amount,
			Type:                   r.Type,
			Date:                   r.NextDate,
			Description:            &desc,
			IsRecurring:            true,
			RecurringTransactionID: &templateID,
			Tags:                   []models.Tag{},
		}
		if err := tx.Omit(clause.Associations).Create(txn).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		r.NextDate = r.Interval.Advance(r.NextDate)
		if r.EndDate != nil && r.NextDate.After(*r.EndDate) {
			r.IsActive = false
		}
		return s.save(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *RecurringStore) checkRefs(ctx context.Context, db *gorm.DB, owner uint, r *models.RecurringTransaction) error {
	ok, err := s.accounts.owns(ctx, db, owner, r.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "account_id", ID: r.AccountID}
	}
	if r.CategoryID == nil {
		return nil
	}
	ok, err = s.categories.owns(ctx, db, owner, *r.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "category_id", ID: *r.CategoryID}
	}
	return nil
}

func validateRecurring(r *models.RecurringTransaction, checkWindow bool) error {
	if strings.TrimSpace(r.Description) == "" {
		return invalidf("description", "is required")
	}
	if err := util.ValidateAmount(r.Amount); err != nil {
		return invalid("amount", err)
	}
	if !r.Type.Valid() {
		return invalidf("type", "must be income, expense or transfer, got %q", r.Type)
	}
	if !r.Interval.Valid() {
		return invalidf("interval", "must be daily, weekly, monthly or yearly, got %q", r.Interval)
	}
	if r.NextDate.IsZero() {
		return invalidf("next_date", "is required")
	}
	if checkWindow && r.EndDate != nil && r.EndDate.Before(r.NextDate) {
		return invalidf("end_date", "must not be before next_date")
	}
	return nil
}

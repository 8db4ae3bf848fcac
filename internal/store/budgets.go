package store

import (
	"context"

	"finflow/internal/models"
	"finflow/internal/util"

	"github.com/shopspring/decimal"
)

type BudgetInput struct {
	CategoryID *uint               `json:"category_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Period     models.BudgetPeriod `json:"period"`
	StartDate  models.Date         `json:"start_date"`
	EndDate    *models.Date        `json:"end_date"`
}

type BudgetPatch struct {
	CategoryID Optional[uint]                `json:"category_id"`
	Amount     Optional[decimal.Decimal]     `json:"amount"`
	Period     Optional[models.BudgetPeriod] `json:"period"`
	StartDate  Optional[models.Date]         `json:"start_date"`
	EndDate    Optional[models.Date]         `json:"end_date"`
	IsActive   Optional[bool]                `json:"is_active"`
}

type BudgetStore struct {
	scoped[models.Budget]
	categories *CategoryStore
}

func (s *BudgetStore) List(ctx context.Context, owner uint, p Page) ([]models.Budget, error) {
	return s.list(ctx, owner, p)
}

func (s *BudgetStore) Get(ctx context.Context, owner, id uint) (*models.Budget, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *BudgetStore) Create(ctx context.Context, owner uint, in BudgetInput) (*models.Budget, error) {
	b := &models.Budget{
		UserID:     owner,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Period:     in.Period,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		IsActive:   true,
	}
	if b.Period == "" {
		b.Period = models.PeriodMonth
	}
	if err := validateBudget(b); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, owner, b.CategoryID); err != nil {
		return nil, err
	}
	if err := s.create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BudgetStore) Update(ctx context.Context, owner, id uint, p BudgetPatch) (*models.Budget, error) {
	b, err := s.get(ctx, s.db, owner, id)
	if err != nil {
		return nil, err
	}

	if err := assign("amount", &b.Amount, p.Amount); err != nil {
		return nil, err
	}
	if err := assign("period", &b.Period, p.Period); err != nil {
		return nil, err
	}
	if err := assign("start_date", &b.StartDate, p.StartDate); err != nil {
		return nil, err
	}
	if err := assign("is_active", &b.IsActive, p.IsActive); err != nil {
		return nil, err
	}
	assignPtr(&b.CategoryID, p.CategoryID)
	assignPtr(&b.EndDate, p.EndDate)

	if err := validateBudget(b); err != nil {
		return nil, err
	}
	if p.CategoryID.Present() {
		if err := s.checkCategory(ctx, owner, b.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, s.db, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BudgetStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

func (s *BudgetStore) checkCategory(ctx context.Context, owner uint, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := s.categories.owns(ctx, s.db, owner, *id)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "category_id", ID: *id}
	}
	return nil
}

func validateBudget(b *models.Budget) error {
	if err := util.ValidateAmount(b.Amount); err != nil {
		return invalid("amount", err)
	}
	if !b.Period.Valid() {
		return invalidf("period", "must be month or year, got %q", b.Period)
	}
	if b.StartDate.IsZero() {
		return invalidf("start_date", "is required")
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return invalidf("end_date", "must not be before start_date")
	}
	return nil
}

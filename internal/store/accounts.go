package store

import (
	"context"
	"strings"

	"finflow/internal/models"
	"finflow/internal/util"

	"github.com/shopspring/decimal"
)

const defaultCurrency = "RUB"

type AccountInput struct {
	Name          string             `json:"name"`
	Type          models.AccountType `json:"type"`
	Balance       decimal.Decimal    `json:"balance"`
	Currency      string             `json:"currency"`
	BankName      *string            `json:"bank_name"`
	AccountNumber *string            `json:"account_number"`
}

type AccountPatch struct {
	Name          Optional[string]             `json:"name"`
	Type          Optional[models.AccountType] `json:"type"`
	Balance       Optional[decimal.Decimal]    `json:"balance"`
	Currency      Optional[string]             `json:"currency"`
	BankName      Optional[string]             `json:"bank_name"`
	AccountNumber Optional[string]             `json:"account_number"`
	IsActive      Optional[bool]               `json:"is_active"`
}

type AccountStore struct {
	scoped[models.Account]
}

func (s *AccountStore) List(ctx context.Context, owner uint, p Page) ([]models.Account, error) {
	return s.list(ctx, owner, p)
}

func (s *AccountStore) Get(ctx context.Context, owner, id uint) (*models.Account, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *AccountStore) Create(ctx context.Context, owner uint, in AccountInput) (*models.Account, error) {
	a := &models.Account{
		UserID:        owner,
		Name:          strings.TrimSpace(in.Name),
		Type:          in.Type,
		Balance:       in.Balance,
		Currency:      normalizeCurrency(in.Currency),
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		IsActive:      true,
	}
	if err := validateAccount(a); err != nil {
		return nil, err
	}
	if err := s.create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AccountStore) Update(ctx context.Context, owner, id uint, p AccountPatch) (*models.Account, error) {
	a, err := s.get(ctx, s.db, owner, id)
	if err != nil {
		return nil, err
	}

	if err := assign("name", &a.Name, p.Name); err != nil {
		return nil, err
	}
	if err := assign("type", &a.Type, p.Type); err != nil {
		return nil, err
	}
	if err := assign("balance", &a.Balance, p.Balance); err != nil {
		return nil, err
	}
	if err := assign("currency", &a.Currency, p.Currency); err != nil {
		return nil, err
	}
	if err := assign("is_active", &a.IsActive, p.IsActive); err != nil {
		return nil, err
	}
	assignPtr(&a.BankName, p.BankName)
	assignPtr(&a.AccountNumber, p.AccountNumber)

	a.Name = strings.TrimSpace(a.Name)
	a.Currency = strings.ToUpper(a.Currency)
	if err := validateAccount(a); err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.db, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete fails with ErrRestricted while transactions still post to the account.
func (s *AccountStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

func validateAccount(a *models.Account) error {
	if err := util.ValidateName(a.Name, 255); err != nil {
		return invalid("name", err)
	}
	if !a.Type.Valid() {
		return invalidf("type", "unknown account type %q", a.Type)
	}
	if err := util.ValidateScale(a.Balance); err != nil {
		return invalid("balance", err)
	}
	if err := util.ValidateCurrency(a.Currency); err != nil {
		return invalid("currency", err)
	}
	if a.BankName != nil && len([]rune(*a.BankName)) > 255 {
		return invalidf("bank_name", "too long, max 255 characters")
	}
	if a.AccountNumber != nil && len([]rune(*a.AccountNumber)) > 50 {
		return invalidf("account_number", "too long, max 50 characters")
	}
	return nil
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return defaultCurrency
	}
	return c
}

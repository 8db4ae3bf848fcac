package store

import (
	"context"
	"errors"
	"fmt"

	"finflow/internal/models"
	"finflow/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionInput struct {
	AccountID   uint                   `json:"account_id"`
	CategoryID  *uint                  `json:"category_id"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Date        models.Date            `json:"date"`
	Description *string                `json:"description"`
	Payee       *string                `json:"payee"`
	Location    *string                `json:"location"`
	TagIDs      []uint                 `json:"tag_ids"`
}

// TransactionPatch is a partial update. TagIDs absent keeps the current tags;
// present (null or []) replaces them.
type TransactionPatch struct {
	AccountID   Optional[uint]                   `json:"account_id"`
	CategoryID  Optional[uint]                   `json:"category_id"`
	Amount      Optional[decimal.Decimal]        `json:"amount"`
	Type        Optional[models.TransactionType] `json:"type"`
	Date        Optional[models.Date]            `json:"date"`
	Description Optional[string]                 `json:"description"`
	Payee       Optional[string]                 `json:"payee"`
	Location    Optional[string]                 `json:"location"`
	TagIDs      Optional[[]uint]                 `json:"tag_ids"`
}

// TransactionFilter narrows List. Dates are inclusive.
type TransactionFilter struct {
	Page
	StartDate  *models.Date
	EndDate    *models.Date
	Type       *models.TransactionType
	CategoryID *uint
}

type ImportError struct {
	Index int              `json:"index"`
	Data  TransactionInput `json:"data"`
	Error string           `json:"error"`
}

type ImportResult struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Errors     []ImportError `json:"errors"`
}

// TransactionStore is the ledger. Transactions have no user_id; they belong
// to whoever owns their account.
type TransactionStore struct {
	db         *gorm.DB
	maxPage    int
	accounts   *AccountStore
	categories *CategoryStore
}

func (s *TransactionStore) owned(db *gorm.DB, owner uint) *gorm.DB {
	return db.Model(&models.Transaction{}).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.user_id = ?", owner)
}

func withTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.id ASC")
	})
}

func (s *TransactionStore) get(ctx context.Context, db *gorm.DB, owner, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := withTags(s.owned(db.WithContext(ctx), owner)).
		Where("transactions.id = ?", id).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if t.Tags == nil {
		t.Tags = []models.Tag{}
	}
	return &t, nil
}

func (s *TransactionStore) Get(ctx context.Context, owner, id uint) (*models.Transaction, error) {
	return s.get(ctx, s.db, owner, id)
}

// List returns the caller's transactions, newest date first, ties by id desc.
func (s *TransactionStore) List(ctx context.Context, owner uint, f TransactionFilter) ([]models.Transaction, error) {
	p, err := f.Page.normalize(s.maxPage)
	if err != nil {
		return nil, err
	}
	items := make([]models.Transaction, 0)
	if p.Limit == 0 {
		return items, nil
	}

	q := s.owned(s.db.WithContext(ctx), owner)
	if f.StartDate != nil {
		q = q.Where("transactions.date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("transactions.date <= ?", *f.EndDate)
	}
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *f.CategoryID)
	}

	err = withTags(q).
		Order("transactions.date DESC").
		Order("transactions.id DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	for i := range items {
		if items[i].Tags == nil {
			items[i].Tags = []models.Tag{}
		}
	}
	return items, nil
}

// Create posts one transaction. Unknown or foreign tag ids are skipped.
func (s *TransactionStore) Create(ctx context.Context, owner uint, in TransactionInput) (*models.Transaction, error) {
	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := &models.Transaction{
			AccountID:   in.AccountID,
			CategoryID:  in.CategoryID,
			Amount:      in.Amount,
			Type:        in.Type,
			Date:        in.Date,
			Description: in.Description,
			Payee:       in.Payee,
			Location:    in.Location,
		}
		if err := s.checkRefs(ctx, tx, owner, t); err != nil {
			return err
		}
		if err := validateTransaction(t); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if len(in.TagIDs) > 0 {
			if err := s.setTags(ctx, tx, owner, t, in.TagIDs); err != nil {
				return err
			}
		}
		id = t.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, s.db, owner, id)
}

func (s *TransactionStore) Update(ctx context.Context, owner, id uint, p TransactionPatch) (*models.Transaction, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.get(ctx, tx, owner, id)
		if err != nil {
			return err
		}

		if err := assign("account_id", &t.AccountID, p.AccountID); err != nil {
			return err
		}
		if err := assign("amount", &t.Amount, p.Amount); err != nil {
			return err
		}
		if err := assign("type", &t.Type, p.Type); err != nil {
			return err
		}
		if err := assign("date", &t.Date, p.Date); err != nil {
			return err
		}
		assignPtr(&t.CategoryID, p.CategoryID)
		assignPtr(&t.Description, p.Description)
		assignPtr(&t.Payee, p.Payee)
		assignPtr(&t.Location, p.Location)

		if p.AccountID.Present() || p.CategoryID.Present() {
			if err := s.checkRefs(ctx, tx, owner, t); err != nil {
				return err
			}
		}
		if err := validateTransaction(t); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if p.TagIDs.Set {
			return s.setTags(ctx, tx, owner, t, p.TagIDs.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, s.db, owner, id)
}

// Delete removes the transaction and its tag links.
func (s *TransactionStore) Delete(ctx context.Context, owner, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(ctx, tx, owner, id); err != nil {
			return err
		}
		return deleteRows(tx, "transactions", []uint{id}, true)
	})
}

// BatchImport creates items one by one, each in its own database
// transaction, so a bad item never rolls back the good ones.
func (s *TransactionStore) BatchImport(ctx context.Context, owner uint, items []TransactionInput) ImportResult {
	res := ImportResult{Total: len(items), Errors: []ImportError{}}
	for i, in := range items {
		if _, err := s.Create(ctx, owner, in); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, ImportError{Index: i, Data: in, Error: err.Error()})
			continue
		}
		res.Successful++
	}
	return res
}

func (s *TransactionStore) checkRefs(ctx context.Context, tx *gorm.DB, owner uint, t *models.Transaction) error {
	ok, err := s.accounts.owns(ctx, tx, owner, t.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "account_id", ID: t.AccountID}
	}
	if t.CategoryID == nil {
		return nil
	}
	ok, err = s.categories.owns(ctx, tx, owner, *t.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Field: "category_id", ID: *t.CategoryID}
	}
	return nil
}

// setTags replaces the tag set with the owned subset of ids.
func (s *TransactionStore) setTags(ctx context.Context, tx *gorm.DB, owner uint, t *models.Transaction, ids []uint) error {
	tags := make([]models.Tag, 0, len(ids))
	if len(ids) > 0 {
		err := tx.WithContext(ctx).Where("id IN ? AND user_id = ?", ids, owner).Order("id ASC").Find(&tags).Error
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}
	}
	assoc := tx.WithContext(ctx).Model(t).Association("Tags")
	if len(tags) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		return nil
	}
	if err := assoc.Replace(tags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	return nil
}

func validateTransaction(t *models.Transaction) error {
	if err := util.ValidateAmount(t.Amount); err != nil {
		return invalid("amount", err)
	}
	if !t.Type.Valid() {
		return invalidf("type", "must be income, expense or transfer, got %q", t.Type)
	}
	if t.Date.IsZero() {
		return invalidf("date", "is required")
	}
	if t.Payee != nil && len([]rune(*t.Payee)) > 255 {
		return invalidf("payee", "too long, max 255 characters")
	}
	if t.Location != nil && len([]rune(*t.Location)) > 255 {
		return invalidf("location", "too long, max 255 characters")
	}
	return nil
}

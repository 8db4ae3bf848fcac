package store

import (
	"context"
	"errors"
	"strings"

	"finflow/internal/models"
	"finflow/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string              `json:"name"`
	Type        models.CategoryType `json:"type"`
	ParentID    *uint               `json:"parent_id"`
	BudgetLimit *decimal.Decimal    `json:"budget_limit"`
	Icon        *string             `json:"icon"`
	Color       *string             `json:"color"`
}

type CategoryPatch struct {
	Name        Optional[string]              `json:"name"`
	Type        Optional[models.CategoryType] `json:"type"`
	ParentID    Optional[uint]                `json:"parent_id"`
	BudgetLimit Optional[decimal.Decimal]     `json:"budget_limit"`
	Icon        Optional[string]              `json:"icon"`
	Color       Optional[string]              `json:"color"`
	IsActive    Optional[bool]                `json:"is_active"`
}

type CategoryStore struct {
	scoped[models.Category]
}

func (s *CategoryStore) List(ctx context.Context, owner uint, p Page) ([]models.Category, error) {
	return s.list(ctx, owner, p)
}

func (s *CategoryStore) Get(ctx context.Context, owner, id uint) (*models.Category, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *CategoryStore) Create(ctx context.Context, owner uint, in CategoryInput) (*models.Category, error) {
	c := &models.Category{
		UserID:      owner,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		ParentID:    in.ParentID,
		BudgetLimit: in.BudgetLimit,
		Icon:        in.Icon,
		Color:       in.Color,
		IsActive:    true,
	}
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, s.db, owner, c); err != nil {
		return nil, err
	}
	if err := s.create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryStore) Update(ctx context.Context, owner, id uint, p CategoryPatch) (*models.Category, error) {
	c, err := s.get(ctx, s.db, owner, id)
	if err != nil {
		return nil, err
	}

	if err := assign("name", &c.Name, p.Name); err != nil {
		return nil, err
	}
	if err := assign("type", &c.Type, p.Type); err != nil {
		return nil, err
	}
	if err := assign("is_active", &c.IsActive, p.IsActive); err != nil {
		return nil, err
	}
	assignPtr(&c.ParentID, p.ParentID)
	assignPtr(&c.BudgetLimit, p.BudgetLimit)
	assignPtr(&c.Icon, p.Icon)
	assignPtr(&c.Color, p.Color)

	c.Name = strings.TrimSpace(c.Name)
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if p.ParentID.Present() {
		if err := s.checkParent(ctx, s.db, owner, c); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, s.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete detaches child categories and transactions and removes the
// category's budgets.
func (s *CategoryStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

// checkParent requires an owned parent and rejects cycles by walking the
// ancestor chain.
func (s *CategoryStore) checkParent(ctx context.Context, db *gorm.DB, owner uint, c *models.Category) error {
	if c.ParentID == nil {
		return nil
	}
	next := *c.ParentID
	seen := map[uint]bool{}
	for {
		if c.ID != 0 && next == c.ID {
			return invalidf("parent_id", "category cannot be its own ancestor")
		}
		if seen[next] {
			return nil
		}
		seen[next] = true

		parent, err := s.get(ctx, db, owner, next)
		if errors.Is(err, ErrNotFound) {
			if len(seen) == 1 {
				return &ReferenceError{Field: "parent_id", ID: next}
			}
			return nil
		}
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		next = *parent.ParentID
	}
}

func validateCategory(c *models.Category) error {
	if err := util.ValidateName(c.Name, 255); err != nil {
		return invalid("name", err)
	}
	if !c.Type.Valid() {
		return invalidf("type", "must be income or expense, got %q", c.Type)
	}
	if c.BudgetLimit != nil {
		if err := util.ValidateAmount(*c.BudgetLimit); err != nil {
			return invalid("budget_limit", err)
		}
	}
	if c.Icon != nil && len([]rune(*c.Icon)) > 50 {
		return invalidf("icon", "too long, max 50 characters")
	}
	if c.Color != nil {
		if err := util.ValidateColor(*c.Color); err != nil {
			return invalid("color", err)
		}
	}
	return nil
}

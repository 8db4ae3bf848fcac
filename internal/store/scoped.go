package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// scoped is the owner-filtered repository shared by every resource that
// carries a user_id column.
type scoped[T any] struct {
	db      *gorm.DB
	table   string
	maxPage int
}

func newScoped[T any](db *gorm.DB, table string, maxPage int) scoped[T] {
	return scoped[T]{db: db, table: table, maxPage: maxPage}
}

func (r scoped[T]) list(ctx context.Context, owner uint, p Page) ([]T, error) {
	p, err := p.normalize(r.maxPage)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0)
	if p.Limit == 0 {
		return items, nil
	}
	err = r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("id ASC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return items, nil
}

func (r scoped[T]) get(ctx context.Context, db *gorm.DB, owner, id uint) (*T, error) {
	var v T
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", singular(r.table), err)
	}
	return &v, nil
}

// owns reports whether id exists under owner.
func (r scoped[T]) owns(ctx context.Context, db *gorm.DB, owner, id uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(new(T)).Where("id = ? AND user_id = ?", id, owner).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", singular(r.table), err)
	}
	return n > 0, nil
}

func (r scoped[T]) create(ctx context.Context, v *T) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create %s: %w", singular(r.table), err)
	}
	return nil
}

func (r scoped[T]) save(ctx context.Context, db *gorm.DB, v *T) error {
	if err := db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("update %s: %w", singular(r.table), err)
	}
	return nil
}

// remove deletes one owned row and applies the deletion rules.
func (r scoped[T]) remove(ctx context.Context, owner, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(ctx, tx, owner, id); err != nil {
			return err
		}
		return deleteRows(tx, r.table, []uint{id}, true)
	})
}

// Package store holds the persistence layer: ownership-scoped repositories
// for every resource, the transaction ledger, recurring templates and users.
// Every read, update and delete is filtered by the owner id the caller passes
// in; a row owned by someone else is reported as ErrNotFound.
package store

import (
	"time"

	"finflow/internal/models"

	"gorm.io/gorm"
)

const defaultMaxPage = 1000

type Options struct {
	MaxPageSize int
	BcryptCost  int
	// Now is the clock used for lockouts and completion stamps; nil means time.Now.
	Now func() time.Time
}

type Store struct {
	db *gorm.DB

	Users        *UserStore
	Sessions     *SessionStore
	Accounts     *AccountStore
	Categories   *CategoryStore
	Tags         *TagStore
	Budgets      *BudgetStore
	Goals        *GoalStore
	Transactions *TransactionStore
	Recurring    *RecurringStore
	Audit        *AuditStore
	Backups      *BackupStore
}

func New(db *gorm.DB, opts Options) *Store {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxPage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	accounts := &AccountStore{scoped: newScoped[models.Account](db, "accounts", opts.MaxPageSize)}
	categories := &CategoryStore{scoped: newScoped[models.Category](db, "categories", opts.MaxPageSize)}
	tags := &TagStore{scoped: newScoped[models.Tag](db, "tags", opts.MaxPageSize)}

	return &Store{
		db:         db,
		Users:      &UserStore{db: db, cost: opts.BcryptCost, now: opts.Now},
		Sessions:   &SessionStore{db: db, now: opts.Now},
		Accounts:   accounts,
		Categories: categories,
		Tags:       tags,
		Budgets: &BudgetStore{
			scoped:     newScoped[models.Budget](db, "budgets", opts.MaxPageSize),
			categories: categories,
		},
		Goals: &GoalStore{
			scoped: newScoped[models.Goal](db, "goals", opts.MaxPageSize),
			now:    opts.Now,
		},
		Transactions: &TransactionStore{
			db:         db,
			maxPage:    opts.MaxPageSize,
			accounts:   accounts,
			categories: categories,
		},
		Recurring: &RecurringStore{
			scoped:     newScoped[models.RecurringTransaction](db, "recurring_transactions", opts.MaxPageSize),
			accounts:   accounts,
			categories: categories,
		},
		Audit: &AuditStore{db: db, maxPage: opts.MaxPageSize},
		Backups: &BackupStore{
			scoped: newScoped[models.Backup](db, "backups", opts.MaxPageSize),
			now:    opts.Now,
		},
	}
}

// DB exposes the handle for components outside the store (reports, audit).
func (s *Store) DB() *gorm.DB {
	return s.db
}

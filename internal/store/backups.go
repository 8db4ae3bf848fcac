package store

import (
	"context"
	"fmt"
	"time"

	"finflow/internal/models"

	"gorm.io/gorm"
)

// SnapshotVersion is bumped when the Snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is everything one user owns, as written into a backup file.
type Snapshot struct {
	Version      int                           `json:"version"`
	UserID       uint                          `json:"user_id"`
	CreatedAt    time.Time                     `json:"created_at"`
	Accounts     []models.Account              `json:"accounts"`
	Categories   []models.Category             `json:"categories"`
	Tags         []models.Tag                  `json:"tags"`
	Budgets      []models.Budget               `json:"budgets"`
	Goals        []models.Goal                 `json:"goals"`
	Recurring    []models.RecurringTransaction `json:"recurring_transactions"`
	Transactions []models.Transaction          `json:"transactions"`
}

// BackupStore keeps the backup file index. The files themselves are managed
// by the caller.
type BackupStore struct {
	scoped[models.Backup]
	now func() time.Time
}

// List returns the owner's backups, newest first.
func (s *BackupStore) List(ctx context.Context, owner uint, p Page) ([]models.Backup, error) {
	p, err := p.normalize(s.maxPage)
	if err != nil {
		return nil, err
	}
	items := make([]models.Backup, 0)
	if p.Limit == 0 {
		return items, nil
	}
	err = s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("id DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return items, nil
}

func (s *BackupStore) Get(ctx context.Context, owner, id uint) (*models.Backup, error) {
	return s.get(ctx, s.db, owner, id)
}

func (s *BackupStore) Create(ctx context.Context, b *models.Backup) error {
	return s.create(ctx, b)
}

func (s *BackupStore) Delete(ctx context.Context, owner, id uint) error {
	return s.remove(ctx, owner, id)
}

// Paths lists the files of every backup the owner has, so they can be
// removed along with the user.
func (s *BackupStore) Paths(ctx context.Context, owner uint) ([]string, error) {
	var paths []string
	err := s.db.WithContext(ctx).Model(&models.Backup{}).Where("user_id = ?", owner).Pluck("file_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("list backup files: %w", err)
	}
	return paths, nil
}

// Snapshot reads all of the owner's data in one transaction.
func (s *BackupStore) Snapshot(ctx context.Context, owner uint) (*Snapshot, error) {
	snap := &Snapshot{
		Version:   SnapshotVersion,
		UserID:    owner,
		CreatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byOwner := func(dst any, what string) error {
			if err := tx.Where("user_id = ?", owner).Order("id ASC").Find(dst).Error; err != nil {
				return fmt.Errorf("snapshot %s: %w", what, err)
			}
			return nil
		}
		if err := byOwner(&snap.Accounts, "accounts"); err != nil {
			return err
		}
		if err := byOwner(&snap.Categories, "categories"); err != nil {
			return err
		}
		if err := byOwner(&snap.Tags, "tags"); err != nil {
			return err
		}
		if err := byOwner(&snap.Budgets, "budgets"); err != nil {
			return err
		}
		if err := byOwner(&snap.Goals, "goals"); err != nil {
			return err
		}
		if err := byOwner(&snap.Recurring, "recurring transactions"); err != nil {
			return err
		}
		err := withTags(tx.Model(&models.Transaction{}).
			Joins("JOIN accounts ON accounts.id = transactions.account_id").
			Where("accounts.user_id = ?", owner)).
			Order("transactions.id ASC").
			Find(&snap.Transactions).Error
		if err != nil {
			return fmt.Errorf("snapshot transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

package store

import (
	"context"
	"fmt"

	"finflow/internal/models"

	"gorm.io/gorm"
)

// AuditStore appends and reads the request audit trail. Rows hold already
// encrypted path and action text.
type AuditStore struct {
	db      *gorm.DB
	maxPage int
}

func (s *AuditStore) Record(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record audit log: %w", err)
	}
	return nil
}

// List returns the owner's entries, newest first.
func (s *AuditStore) List(ctx context.Context, owner uint, p Page) ([]models.AuditLog, error) {
	p, err := p.normalize(s.maxPage)
	if err != nil {
		return nil, err
	}
	items := make([]models.AuditLog, 0)
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
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return items, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStore tracks issued access tokens by their jti.
type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

func (s *SessionStore) Open(ctx context.Context, userID uint, ttl time.Duration) (*models.Session, error) {
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().UTC().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

// Active reports whether the session exists for userID, is unrevoked and
// has not expired.
func (s *SessionStore) Active(ctx context.Context, id string, userID uint) (bool, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get session: %w", err)
	}
	return !sess.Revoked && s.now().Before(sess.ExpiresAt), nil
}

func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every session of the user, e.g. after a password change.
func (s *SessionStore) RevokeAll(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions past their expiry and returns how many went.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", s.now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

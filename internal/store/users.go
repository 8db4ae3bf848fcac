package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"finflow/internal/models"
	"finflow/internal/util"

	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
	defaultTimezone = "Europe/Moscow"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

type UserPatch struct {
	Email    Optional[string] `json:"email"`
	FullName Optional[string] `json:"full_name"`
	Currency Optional[string] `json:"currency"`
	Timezone Optional[string] `json:"timezone"`
}

type UserStore struct {
	db   *gorm.DB
	cost int
	now  func() time.Time
}

func (s *UserStore) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	u := &models.User{
		Email:    normalizeEmail(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Currency: normalizeCurrency(in.Currency),
		Timezone: strings.TrimSpace(in.Timezone),
		IsActive: true,
	}
	if u.Timezone == "" {
		u.Timezone = defaultTimezone
	}
	if err := validateUser(u); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, invalid("password", err)
	}

	taken, err := s.emailTaken(ctx, u.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := util.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks credentials. Five consecutive failures lock the user
// for ten minutes; a success clears the counter and stamps last_login.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now().UTC()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return nil, ErrLocked
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		u.FailedLoginAttempts++
		if u.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(lockDuration)
			u.LockedUntil = &until
			u.FailedLoginAttempts = 0
		}
		if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		return nil, ErrBadCredentials
	}

	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLogin = &now
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Update(ctx context.Context, id uint, p UserPatch) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := assign("email", &u.Email, p.Email); err != nil {
		return nil, err
	}
	if err := assign("full_name", &u.FullName, p.FullName); err != nil {
		return nil, err
	}
	if err := assign("currency", &u.Currency, p.Currency); err != nil {
		return nil, err
	}
	if err := assign("timezone", &u.Timezone, p.Timezone); err != nil {
		return nil, err
	}
	u.Email = normalizeEmail(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	u.Currency = strings.ToUpper(strings.TrimSpace(u.Currency))
	if err := validateUser(u); err != nil {
		return nil, err
	}

	if p.Email.Present() {
		taken, err := s.emailTaken(ctx, u.Email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !util.CheckPassword(oldPassword, u.PasswordHash) {
		return invalidf("old_password", "incorrect password")
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		return invalid("new_password", err)
	}
	hash, err := util.HashPassword(newPassword, s.cost)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(u).Update("password_hash", hash).Error
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes the user and everything they own.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return deleteRows(tx, "users", []uint{id}, true)
	})
}

func (s *UserStore) emailTaken(ctx context.Context, email string, except uint) (bool, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if except != 0 {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func validateUser(u *models.User) error {
	if err := util.ValidateEmail(u.Email); err != nil {
		return invalid("email", err)
	}
	if len([]rune(u.FullName)) > 255 {
		return invalidf("full_name", "too long, max 255 characters")
	}
	if err := util.ValidateCurrency(u.Currency); err != nil {
		return invalid("currency", err)
	}
	if _, err := time.LoadLocation(u.Timezone); err != nil || u.Timezone == "" {
		return invalidf("timezone", "unknown time zone %q", u.Timezone)
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

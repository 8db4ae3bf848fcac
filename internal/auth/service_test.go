package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finflow/internal/config"
	"finflow/internal/database"
	"finflow/internal/models"
	"finflow/internal/store"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "auth.db")})
	if err != nil {
		t.Fatalf("database.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	s := store.New(db, store.Options{BcryptCost: bcrypt.MinCost})
	svc := NewService(s.Users, s.Sessions, Config{Secret: "test-secret", Issuer: "finflow", TTL: time.Hour}, nil)
	return svc, s
}

func register(t *testing.T, s *store.Store, email string) *models.User {
	t.Helper()
	u, err := s.Users.Register(context.Background(), store.RegisterInput{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("Register(%q) error = %v", email, err)
	}
	return u
}

func TestLoginAndCurrentUser(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	u := register(t, s, "u@example.com")

	tok, err := svc.Login(ctx, "u@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Errorf("Login() token = %+v", tok)
	}

	got, sessionID, err := svc.CurrentUser(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if got.ID != u.ID || sessionID == "" {
		t.Errorf("CurrentUser() = %d %q, want %d and a session id", got.ID, sessionID, u.ID)
	}

	if err := svc.Logout(ctx, sessionID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, _, err := svc.CurrentUser(ctx, tok.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("CurrentUser(after logout) error = %v, want ErrInvalidToken", err)
	}
}

func TestCurrentUser_RejectsBadTokens(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	register(t, s, "u@example.com")
	tok, err := svc.Login(ctx, "u@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	other := NewService(s.Users, s.Sessions, Config{Secret: "another-secret"}, nil)
	cases := map[string]struct {
		svc   *Service
		token string
	}{
		"empty":        {svc, ""},
		"garbage":      {svc, "not.a.jwt"},
		"wrong secret": {other, tok.AccessToken},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := tc.svc.CurrentUser(ctx, tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("CurrentUser() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	u := register(t, s, "u@example.com")

	first, err := svc.Login(ctx, "u@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	second, err := svc.Login(ctx, "u@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "password123", "brand-new-pass"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	for _, tok := range []*Token{first, second} {
		if _, _, err := svc.CurrentUser(ctx, tok.AccessToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("CurrentUser(old token) error = %v, want ErrInvalidToken", err)
		}
	}
	if _, err := svc.Login(ctx, "u@example.com", "brand-new-pass"); err != nil {
		t.Errorf("Login(new password) error = %v", err)
	}
}

func TestCurrentUser_DeletedUser(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	u := register(t, s, "u@example.com")
	tok, err := svc.Login(ctx, "u@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := s.Users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Users.Delete() error = %v", err)
	}
	if _, _, err := svc.CurrentUser(ctx, tok.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("CurrentUser(deleted user) error = %v, want ErrInvalidToken", err)
	}
}

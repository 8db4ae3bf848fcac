// Package auth issues and resolves access tokens. A token is an HS256 JWT
// whose jti names a session row, so logout can revoke it before expiry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finflow/internal/logging"
	"finflow/internal/models"
	"finflow/internal/store"
	"finflow/internal/util"
)

// ErrInvalidToken covers missing, malformed, expired and revoked tokens.
var ErrInvalidToken = errors.New("could not validate credentials")

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Token is the login response body.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Service struct {
	users    *store.UserStore
	sessions *store.SessionStore
	cfg      Config
	log      *logging.Logger
}

func NewService(users *store.UserStore, sessions *store.SessionStore, cfg Config, log *logging.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{users: users, sessions: sessions, cfg: cfg, log: log.WithComponent(logging.ComponentAuth)}
}

// Login authenticates the credentials and opens a session for them.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			s.log.Warn("login attempt on locked user", "email", email)
		}
		return nil, err
	}

	if n, err := s.sessions.PurgeExpired(ctx); err != nil {
		s.log.Warn("purge expired sessions failed", "error", err)
	} else if n > 0 {
		s.log.Debug("purged expired sessions", "count", n)
	}

	sess, err := s.sessions.Open(ctx, u.ID, s.cfg.TTL)
	if err != nil {
		return nil, err
	}
	signed, expires, err := util.GenerateToken(s.cfg.Secret, s.cfg.Issuer, u.ID, sess.ID, s.cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user logged in", "user_id", u.ID)
	return &Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expires}, nil
}

// CurrentUser resolves a bearer token to its user. The returned session id
// is what Logout revokes.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, string, error) {
	if token == "" {
		return nil, "", ErrInvalidToken
	}
	claims, err := util.ParseToken(s.cfg.Secret, token)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	ok, err := s.sessions.Active(ctx, claims.ID, claims.UserID)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: session ended", ErrInvalidToken)
	}

	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("%w: user gone", ErrInvalidToken)
	}
	if err != nil {
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", store.ErrInactiveUser
	}
	return u, claims.ID, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// ChangePassword updates the password and ends every open session.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if err := s.users.ChangePassword(ctx, userID, oldPassword, newPassword); err != nil {
		return err
	}
	return s.sessions.RevokeAll(ctx, userID)
}

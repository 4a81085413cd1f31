// Package session issues and resolves bearer tokens for the demo login.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// Session is an authenticated login bound to one user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Store persists sessions until their TTL elapses.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// Credentials is the single demo account accepted by Login.
type Credentials struct {
	Username string
	Password string
	UserID   string
}

// Manager checks credentials and manages session lifetimes.
type Manager struct {
	store Store
	creds Credentials
	ttl   time.Duration
	nowFn func() time.Time
}

// NewManager returns a Manager issuing sessions that live for ttl.
func NewManager(store Store, creds Credentials, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		store: store,
		creds: creds,
		ttl:   ttl,
		nowFn: time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (m *Manager) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		m.nowFn = nowFn
	}
}

// Login issues a new session when username and password match the demo account.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.creds.Password)) == 1
	if !userOK || !passOK || m.creds.Username == "" {
		return Session{}, ErrInvalidCredentials
	}

	s := Session{
		Token:     uuid.NewString(),
		UserID:    m.creds.UserID,
		ExpiresAt: m.nowFn().UTC().Add(m.ttl),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Resolve returns the live session for token, or ErrSessionNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionNotFound
	}
	s, err := m.store.Load(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if !m.nowFn().Before(s.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Logout ends the session. Unknown tokens are not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

type contextKey struct{}

// NewContext attaches s to ctx.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by NewContext.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

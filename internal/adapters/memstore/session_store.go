// Package memstore provides the in-process session store. Sessions do not
// survive a restart; that is intentional, a restart logs everyone out.
package memstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

const (
	tokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// SessionStore keeps sessions in a mutex-guarded map with sliding expiry.
// All methods are safe for concurrent use; callers only ever receive value
// copies of sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session

	timeout time.Duration
	now     func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Option customizes a SessionStore.
type Option func(*SessionStore)

// WithClock overrides the store's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates a store whose sessions expire after timeout of
// inactivity. A non-positive timeout falls back to one hour.
func NewSessionStore(timeout time.Duration, opts ...Option) *SessionStore {
	if timeout <= 0 {
		timeout = time.Hour
	}
	s := &SessionStore{
		sessions: make(map[string]domainauth.Session),
		timeout:  timeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Create(_ context.Context, user domainauth.AuthUser) (domainauth.Session, error) {
	token, err := generateToken()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	sess := domainauth.Session{
		Token:        token,
		UserID:       user.ID,
		Username:     user.Username,
		Roles:        append([]string(nil), user.Groups...),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.timeout),
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()

	return sess, nil
}

func (s *SessionStore) Validate(_ context.Context, token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	now := s.now()
	if sess.Expired(now) {
		// Expire-on-access: remove under the same lock so no other caller can
		// observe the stale record.
		delete(s.sessions, token)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	// Sliding renewal: every successful validation extends the session.
	sess.LastActivity = now
	sess.ExpiresAt = now.Add(s.timeout)
	s.sessions[token] = sess

	return sess, nil
}

func (s *SessionStore) Invalidate(_ context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) CleanupExpired(_ context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live entries, expired or not. Used by tests and
// the sweeper's debug logging.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// generateToken returns a 32-character random token drawn from a 62-symbol
// alphabet. Collision probability is negligible at that size, so the store
// does not check for duplicates.
func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

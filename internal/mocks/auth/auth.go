// Package auth contains simple hand-written test doubles for the auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider         = (*MockAuthProvider)(nil)
	_ ports.RedirectAuthProvider = (*MockRedirectProvider)(nil)
	_ ports.SessionStore         = (*MemorySessionStore)(nil)
	_ ports.RateLimiter          = (*StubRateLimiter)(nil)
	_ ports.AccessResolver       = (*StaticAccessResolver)(nil)
)

// MockAuthProvider returns a fixed identity unless AuthenticateFunc overrides it.
type MockAuthProvider struct {
	AuthenticateFunc func(ctx context.Context, req ports.AuthRequest) (domainauth.Identity, error)
	Identity         domainauth.Identity
	ProviderType     string

	mu    sync.Mutex
	calls []ports.AuthRequest
}

// NewMockAuthProvider creates a provider that accepts everything as a plain user.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		ProviderType: "mock",
		Identity: domainauth.Identity{
			UserID:   "mock-user-1",
			Username: "mock.user",
			Groups:   []string{"users"},
		},
	}
}

func (m *MockAuthProvider) Authenticate(ctx context.Context, req ports.AuthRequest) (domainauth.Identity, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, req)
	}
	return m.Identity, nil
}

func (m *MockAuthProvider) Type() string {
	if m.ProviderType == "" {
		return "mock"
	}
	return m.ProviderType
}

// Calls returns a copy of every request seen so far.
func (m *MockAuthProvider) Calls() []ports.AuthRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.AuthRequest(nil), m.calls...)
}

// MockRedirectProvider adds a canned Begin to MockAuthProvider.
type MockRedirectProvider struct {
	MockAuthProvider
	BeginFunc func(ctx context.Context, state string) (string, error)
	AuthURL   string
}

func (m *MockRedirectProvider) Begin(ctx context.Context, state string) (string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, state)
	}
	url := m.AuthURL
	if url == "" {
		url = "https://mock-idp/authorize"
	}
	return url + "?state=" + state, nil
}

// MemorySessionStore is a minimal token-keyed store with fixed token minting,
// useful when tests want full control over session contents.
type MemorySessionStore struct {
	CreateFunc   func(ctx context.Context, user domainauth.AuthUser) (domainauth.Session, error)
	ValidateFunc func(ctx context.Context, token string) (domainauth.Session, error)

	mu       sync.Mutex
	sessions map[string]domainauth.Session
	counter  int
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Create(ctx context.Context, user domainauth.AuthUser) (domainauth.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	now := time.Now()
	sess := domainauth.Session{
		Token:        "token-" + string(rune('a'+m.counter-1)),
		UserID:       user.ID,
		Username:     user.Username,
		Roles:        append([]string(nil), user.Groups...),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
		LastActivity: now,
	}
	m.sessions[sess.Token] = sess
	return sess, nil
}

func (m *MemorySessionStore) Validate(ctx context.Context, token string) (domainauth.Session, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Invalidate(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemorySessionStore) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

// Len reports the number of live sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StubRateLimiter never blocks unless Limited is set.
type StubRateLimiter struct {
	Limited bool

	mu        sync.Mutex
	failures  map[string]int
	successes map[string]int
}

func NewStubRateLimiter() *StubRateLimiter {
	return &StubRateLimiter{
		failures:  make(map[string]int),
		successes: make(map[string]int),
	}
}

func (s *StubRateLimiter) RecordFailure(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id]++
	return s.Limited
}

func (s *StubRateLimiter) IsLimited(string) bool { return s.Limited }

func (s *StubRateLimiter) RecordSuccess(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes[id]++
}

func (s *StubRateLimiter) AttemptCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[id]
}

func (s *StubRateLimiter) BlockRemaining(string) (time.Duration, bool) {
	if s.Limited {
		return time.Minute, true
	}
	return 0, false
}

func (s *StubRateLimiter) Unblock(string) {}

func (s *StubRateLimiter) Cleanup() int { return 0 }

// Successes reports how often RecordSuccess ran for an identifier.
func (s *StubRateLimiter) Successes(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successes[id]
}

// StaticAccessResolver grants a fixed cluster set to everyone.
type StaticAccessResolver struct {
	Clusters []string
}

func (s StaticAccessResolver) ResolveClusterAccess([]string, []string) []string {
	if s.Clusters == nil {
		return []string{}
	}
	return append([]string(nil), s.Clusters...)
}

func (s StaticAccessResolver) CanAccessCluster(_ []string, clusterID string) bool {
	for _, c := range s.Clusters {
		if c == domainauth.Wildcard || c == clusterID {
			return true
		}
	}
	return false
}

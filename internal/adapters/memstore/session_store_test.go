package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// fakeClock provides a controllable time source for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testUser() domainauth.AuthUser {
	return domainauth.AuthUser{
		ID:                 "u-1",
		Username:           "alice",
		Groups:             []string{"ops"},
		AccessibleClusters: []string{"prod-1"},
	}
}

func TestSessionStore_CreateGeneratesUniqueTokens(t *testing.T) {
	store := NewSessionStore(time.Minute)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 50 {
		sess, err := store.Create(ctx, testUser())
		require.NoError(t, err)
		assert.Len(t, sess.Token, 32)
		for _, r := range sess.Token {
			assert.True(t,
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
				"token must be alphanumeric, got %q", r)
		}
		assert.False(t, seen[sess.Token], "token collision")
		seen[sess.Token] = true
	}
	assert.Equal(t, 50, store.Len())
}

func TestSessionStore_ValidateRenews(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(60*time.Second, WithClock(clock.Now))
	ctx := context.Background()

	created, err := store.Create(ctx, testUser())
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	renewed, err := store.Validate(ctx, created.Token)
	require.NoError(t, err)

	assert.Equal(t, created.UserID, renewed.UserID)
	assert.True(t, renewed.ExpiresAt.After(created.ExpiresAt),
		"validation must strictly extend expiry")
	assert.Equal(t, clock.Now(), renewed.LastActivity)
	assert.Equal(t, renewed.LastActivity.Add(60*time.Second), renewed.ExpiresAt)
}

func TestSessionStore_ExpiresAfterTimeout(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(60*time.Second, WithClock(clock.Now))
	ctx := context.Background()

	sess, err := store.Create(ctx, testUser())
	require.NoError(t, err)

	// Valid just before the deadline.
	clock.Advance(59 * time.Second)
	_, err = store.Validate(ctx, sess.Token)
	require.NoError(t, err)

	// The validation above renewed the session, so walk past the new deadline.
	clock.Advance(61 * time.Second)
	_, err = store.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	// Expire-on-access removed it.
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_ValidateUnknownToken(t *testing.T) {
	store := NewSessionStore(time.Minute)
	_, err := store.Validate(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = store.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_InvalidateIsIdempotent(t *testing.T) {
	store := NewSessionStore(time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, testUser())
	require.NoError(t, err)

	require.NoError(t, store.Invalidate(ctx, sess.Token))
	require.NoError(t, store.Invalidate(ctx, sess.Token))

	_, err = store.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_CleanupExpired(t *testing.T) {
	clock := newFakeClock()
	store := NewSessionStore(60*time.Second, WithClock(clock.Now))
	ctx := context.Background()

	old, err := store.Create(ctx, testUser())
	require.NoError(t, err)

	clock.Advance(90 * time.Second)
	fresh, err := store.Create(ctx, testUser())
	require.NoError(t, err)

	removed, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Validate(ctx, old.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	_, err = store.Validate(ctx, fresh.Token)
	assert.NoError(t, err)
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore(time.Minute)
	ctx := context.Background()

	tokens := make([]string, 20)
	for i := range tokens {
		sess, err := store.Create(ctx, testUser())
		require.NoError(t, err)
		tokens[i] = sess.Token
	}

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, _ = store.Validate(ctx, tokens[i%len(tokens)])
			case 1:
				_, _ = store.Create(ctx, testUser())
			default:
				_, _ = store.CleanupExpired(ctx)
			}
		}(i)
	}
	wg.Wait()
}

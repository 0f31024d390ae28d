package localauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/esdeck/esdeck-api/internal/adapters/ratelimit"
	"github.com/esdeck/esdeck-api/internal/ports"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestProvider(t *testing.T) (*Provider, *ratelimit.Limiter) {
	t.Helper()
	limiter := ratelimit.New(ratelimit.Config{
		MaxAttempts:   3,
		Window:        5 * time.Minute,
		BlockDuration: 15 * time.Minute,
	})
	p, err := NewProvider(Options{
		Users: []User{
			{Username: "alice", PasswordHash: hashFor(t, "s3cret"), Groups: []string{"ops"}},
		},
		Limiter: limiter,
	})
	require.NoError(t, err)
	return p, limiter
}

func TestProvider_AuthenticateSuccess(t *testing.T) {
	p, _ := newTestProvider(t)

	id, err := p.Authenticate(context.Background(), ports.AuthRequest{
		Username: "alice",
		Password: "s3cret",
		RemoteIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "alice", id.UserID)
	assert.Equal(t, []string{"ops"}, id.Groups)
}

func TestProvider_FailuresAreIndistinguishable(t *testing.T) {
	p, limiter := newTestProvider(t)
	ctx := context.Background()

	// Known username, wrong password.
	_, wrongPass := p.Authenticate(ctx, ports.AuthRequest{
		Username: "alice", Password: "nope", RemoteIP: "10.0.0.1",
	})
	// Unknown username.
	_, unknown := p.Authenticate(ctx, ports.AuthRequest{
		Username: "mallory", Password: "whatever", RemoteIP: "10.0.0.2",
	})

	assert.ErrorIs(t, wrongPass, ports.ErrAuthenticationFailed)
	assert.ErrorIs(t, unknown, ports.ErrAuthenticationFailed)
	assert.Equal(t, wrongPass.Error(), unknown.Error(), "no oracle between the two outcomes")

	// Both incremented their own counters.
	assert.Equal(t, 1, limiter.AttemptCount("user:alice"))
	assert.Equal(t, 1, limiter.AttemptCount("user:mallory"))
	assert.Equal(t, 1, limiter.AttemptCount("ip:10.0.0.1"))
	assert.Equal(t, 1, limiter.AttemptCount("ip:10.0.0.2"))
}

func TestProvider_RateLimitedBeforePasswordCheck(t *testing.T) {
	p, limiter := newTestProvider(t)
	ctx := context.Background()

	for range 3 {
		_, _ = p.Authenticate(ctx, ports.AuthRequest{Username: "alice", Password: "bad"})
	}
	require.True(t, limiter.IsLimited("user:alice"))

	// Even the correct password fails while blocked, with the uniform error.
	_, err := p.Authenticate(ctx, ports.AuthRequest{Username: "alice", Password: "s3cret"})
	assert.ErrorIs(t, err, ports.ErrAuthenticationFailed)
}

func TestProvider_SuccessClearsOnlyUsernameCounter(t *testing.T) {
	p, limiter := newTestProvider(t)
	ctx := context.Background()

	for range 2 {
		_, _ = p.Authenticate(ctx, ports.AuthRequest{
			Username: "alice", Password: "bad", RemoteIP: "10.0.0.1",
		})
	}
	require.Equal(t, 2, limiter.AttemptCount("user:alice"))
	require.Equal(t, 2, limiter.AttemptCount("ip:10.0.0.1"))

	_, err := p.Authenticate(ctx, ports.AuthRequest{
		Username: "alice", Password: "s3cret", RemoteIP: "10.0.0.1",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, limiter.AttemptCount("user:alice"))
	// One working login must not reset the address behind it; that would
	// let a probing IP launder its counter through a valid account.
	assert.Equal(t, 2, limiter.AttemptCount("ip:10.0.0.1"))
}

func TestDummyHashIsComparable(t *testing.T) {
	// The unknown-user path relies on this hash being structurally valid
	// so bcrypt runs its full comparison instead of bailing on parse.
	cost, err := bcrypt.Cost(dummyHash)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)
}

func TestNewProvider_Validation(t *testing.T) {
	limiter := ratelimit.New(ratelimit.DefaultConfig())

	_, err := NewProvider(Options{Limiter: limiter})
	assert.Error(t, err, "no users")

	_, err = NewProvider(Options{Users: []User{{Username: "a", PasswordHash: "h"}}})
	assert.Error(t, err, "no limiter")

	_, err = NewProvider(Options{
		Users:   []User{{Username: "a"}},
		Limiter: limiter,
	})
	assert.Error(t, err, "missing hash")
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter3")))
}

// Package ports defines interfaces (hexagonal ports) for authentication,
// session, and access-control behavior. Implementations live in
// internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
)

// AuthRequest carries the inputs an AuthProvider needs to authenticate a caller.
// Local providers use Username/Password/RemoteIP; the OIDC provider uses Code.
type AuthRequest struct {
	Username string
	Password string
	Code     string
	RemoteIP string
}

// AuthProvider verifies a credential or callback and yields an identity.
type AuthProvider interface {
	// Authenticate verifies the request and returns the authenticated identity.
	// Credential failures, unknown users, and rate-limited callers all surface
	// as the same outward error to prevent oracle leaks.
	Authenticate(ctx context.Context, req AuthRequest) (domainauth.Identity, error)

	// Type returns the provider tag ("local_users", "oidc", or "open").
	Type() string
}

// RedirectAuthProvider is implemented by providers that authenticate through
// an external redirect flow (OIDC).
type RedirectAuthProvider interface {
	AuthProvider

	// Begin returns the authorization URL the browser should be redirected to,
	// carrying the caller-supplied anti-CSRF state.
	Begin(ctx context.Context, state string) (authURL string, err error)
}

// SessionStore owns session records and their TTL semantics.
type SessionStore interface {
	// Create mints a fresh opaque token and stores a session for the user.
	Create(ctx context.Context, user domainauth.AuthUser) (domainauth.Session, error)

	// Validate looks up the token. Missing or expired sessions return
	// ErrSessionNotFound (expired ones are removed on the way out). Live
	// sessions are renewed: LastActivity moves to now and ExpiresAt slides
	// forward by the store timeout.
	Validate(ctx context.Context, token string) (domainauth.Session, error)

	// Invalidate removes the session. Removing an absent token is not an error.
	Invalidate(ctx context.Context, token string) error

	// CleanupExpired removes every expired session and reports how many.
	// Validate already self-expires; this exists for memory hygiene.
	CleanupExpired(ctx context.Context) (int, error)
}

// RateLimiter tracks failed authentication attempts per identifier
// (username or source IP) over a sliding window.
type RateLimiter interface {
	// RecordFailure prunes stale attempts, appends one, and reports whether
	// this failure tripped the block threshold.
	RecordFailure(id string) bool

	// IsLimited reports whether the identifier is currently blocked.
	IsLimited(id string) bool

	// RecordSuccess clears the identifier's attempt history and unblocks it.
	RecordSuccess(id string)

	// AttemptCount returns the number of in-window failed attempts.
	AttemptCount(id string) int

	// BlockRemaining returns how long the identifier stays blocked, if it is.
	BlockRemaining(id string) (time.Duration, bool)

	// Unblock is a manual operator override.
	Unblock(id string)

	// Cleanup drops identifiers that are neither blocked nor recently failing
	// and reports how many were removed.
	Cleanup() int
}

// AccessResolver reduces a principal's group/role memberships to the set of
// cluster IDs it may operate on.
type AccessResolver interface {
	// ResolveClusterAccess returns the accessible cluster IDs. The result may
	// be exactly the wildcard set; candidates are the known cluster IDs used
	// by strategies that match patterns rather than enumerate grants.
	// No match means no access.
	ResolveClusterAccess(groups []string, candidates []string) []string

	// CanAccessCluster reports whether the memberships grant the cluster.
	CanAccessCluster(groups []string, clusterID string) bool
}

// ErrSessionNotFound is returned when a session token is unknown or expired.
type sessionNotFoundError struct{}

func (sessionNotFoundError) Error() string { return "session not found" }

var ErrSessionNotFound error = sessionNotFoundError{}

// ErrAuthenticationFailed is the single outward signal for every credential
// failure: unknown user, wrong password, rate-limited caller, or a rejected
// OIDC token. Collapsing them prevents account enumeration; providers log the
// real cause server-side.
type authenticationFailedError struct{}

func (authenticationFailedError) Error() string { return "authentication failed" }

var ErrAuthenticationFailed error = authenticationFailedError{}

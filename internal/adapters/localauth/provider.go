// Package localauth authenticates against a static configured user list with
// bcrypt password hashes. Intended for small installations that do not run an
// identity provider.
package localauth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// ProviderType is the configuration tag for this provider.
const ProviderType = "local_users"

// dummyHash is compared against when the username does not exist, so the
// unknown-user path costs a full bcrypt verify. The comparison result is
// always discarded.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// User is one configured local account.
type User struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"`
	Groups       []string `json:"groups"`
}

// Provider implements ports.AuthProvider over the configured user list.
// Every failure path returns ports.ErrAuthenticationFailed so callers cannot
// tell unknown users, wrong passwords, and rate-limited attempts apart.
type Provider struct {
	users   map[string]User
	limiter ports.RateLimiter
	logger  *slog.Logger
}

var _ ports.AuthProvider = (*Provider)(nil)

// Options groups dependencies for the local provider.
type Options struct {
	Users   []User
	Limiter ports.RateLimiter
	Logger  *slog.Logger
}

// NewProvider validates the configured accounts and builds the provider.
func NewProvider(opts Options) (*Provider, error) {
	if len(opts.Users) == 0 {
		return nil, errors.New("local auth: at least one user is required")
	}
	if opts.Limiter == nil {
		return nil, errors.New("local auth: rate limiter is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	users := make(map[string]User, len(opts.Users))
	for _, u := range opts.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return nil, errors.New("local auth: users need a username and a password hash")
		}
		users[u.Username] = u
	}

	return &Provider{
		users:   users,
		limiter: opts.Limiter,
		logger:  logger.With("component", "local_auth"),
	}, nil
}

func (p *Provider) Type() string { return ProviderType }

// Authenticate verifies username and password against the configured list,
// consulting the rate limiter for both the username and the source IP.
func (p *Provider) Authenticate(ctx context.Context, req ports.AuthRequest) (domainauth.Identity, error) {
	ids := identifiers(req)

	for _, id := range ids {
		if p.limiter.IsLimited(id) {
			p.logger.WarnContext(ctx, "login rejected: rate limited",
				"username", req.Username,
				"remote_ip", req.RemoteIP,
				"attempts", p.limiter.AttemptCount(id),
			)
			return domainauth.Identity{}, ports.ErrAuthenticationFailed
		}
	}

	user, known := p.users[req.Username]
	if !known {
		// Burn the same bcrypt cost as a real check so unknown usernames
		// cannot be told apart from wrong passwords by response time.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		// Unknown usernames count toward the limit too; otherwise differing
		// rate-limit behavior would leak which accounts exist.
		p.recordFailure(ctx, ids, req)
		p.logger.WarnContext(ctx, "login failed: unknown username",
			"username", req.Username, "remote_ip", req.RemoteIP)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		p.recordFailure(ctx, ids, req)
		p.logger.WarnContext(ctx, "login failed: wrong password",
			"username", req.Username, "remote_ip", req.RemoteIP)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	// Only the username counter resets on success. The IP counter keeps
	// accumulating so one valid account cannot launder an address that is
	// probing other accounts.
	p.limiter.RecordSuccess(ids[0])

	return domainauth.Identity{
		UserID:   user.Username,
		Username: user.Username,
		Groups:   append([]string(nil), user.Groups...),
	}, nil
}

func (p *Provider) recordFailure(ctx context.Context, ids []string, req ports.AuthRequest) {
	for _, id := range ids {
		if p.limiter.RecordFailure(id) {
			p.logger.WarnContext(ctx, "identifier blocked by rate limiter",
				"identifier", id,
				"username", req.Username,
				"remote_ip", req.RemoteIP,
			)
		}
	}
}

// identifiers returns the rate-limit keys for a request: the username and,
// when present, the source IP.
func identifiers(req ports.AuthRequest) []string {
	ids := []string{"user:" + req.Username}
	if req.RemoteIP != "" {
		ids = append(ids, "ip:"+req.RemoteIP)
	}
	return ids
}

// HashPassword produces a bcrypt hash for a plaintext password. Used by the
// admin CLI when generating local user entries.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Package openauth provides the no-credential "open" provider for local
// development. Every authentication attempt yields the same dev principal
// with wildcard cluster access. It must be selected explicitly via
// AUTH_MODE=open and is refused outside dev mode by config validation.
package openauth

import (
	"context"
	"log/slog"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// ProviderType is the configuration tag for this provider.
const ProviderType = "open"

// Provider implements ports.AuthProvider with no credential check.
type Provider struct {
	identity domainauth.Identity
	logger   *slog.Logger
}

var _ ports.AuthProvider = (*Provider)(nil)

// Config controls the dev identity. Zero values get sensible defaults.
type Config struct {
	UserID   string
	Username string
	Groups   []string
}

// NewProvider builds the open provider.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.UserID == "" {
		cfg.UserID = "dev"
	}
	if cfg.Username == "" {
		cfg.Username = "dev"
	}
	// The dev principal always carries the wildcard group so it keeps full
	// cluster access no matter what the role or mapping tables say.
	if !containsWildcard(cfg.Groups) {
		cfg.Groups = append(append([]string(nil), cfg.Groups...), domainauth.Wildcard)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:   cfg.UserID,
			Username: cfg.Username,
			Groups:   cfg.Groups,
		},
		logger: logger.With("component", "open_auth"),
	}
}

func (p *Provider) Type() string { return ProviderType }

// Authenticate ignores the supplied credentials and returns the dev identity.
func (p *Provider) Authenticate(ctx context.Context, _ ports.AuthRequest) (domainauth.Identity, error) {
	p.logger.InfoContext(ctx, "open auth mode: issuing dev identity", "user_id", p.identity.UserID)
	return domainauth.Identity{
		UserID:   p.identity.UserID,
		Username: p.identity.Username,
		Groups:   append([]string(nil), p.identity.Groups...),
	}, nil
}

func containsWildcard(groups []string) bool {
	for _, g := range groups {
		if g == domainauth.Wildcard {
			return true
		}
	}
	return false
}

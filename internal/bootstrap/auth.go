package bootstrap

import (
	"context"
	"log/slog"

	"github.com/esdeck/esdeck-api/config"
	"github.com/esdeck/esdeck-api/internal/adapters/localauth"
	"github.com/esdeck/esdeck-api/internal/adapters/oidc"
	"github.com/esdeck/esdeck-api/internal/adapters/openauth"
	apperrors "github.com/esdeck/esdeck-api/internal/errors"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// ProviderDeps carries everything a provider constructor may need.
type ProviderDeps struct {
	Auth    config.AuthConfig
	IsDev   bool
	Limiter ports.RateLimiter
	Logger  *slog.Logger
}

// BuildAuthProvider constructs the provider selected by AUTH_MODE. A
// misconfigured provider is a startup failure, never a silently
// disabled feature.
func BuildAuthProvider(ctx context.Context, deps ProviderDeps) (ports.AuthProvider, error) {
	switch deps.Auth.Mode {
	case config.AuthModeLocalUsers:
		return buildLocalProvider(deps)
	case config.AuthModeOIDC:
		return buildOIDCProvider(ctx, deps)
	case config.AuthModeOpen:
		if !deps.IsDev {
			return nil, apperrors.ProviderConfig("open auth mode is only permitted in dev mode")
		}
		return openauth.NewProvider(openauth.Config{
			UserID:   deps.Auth.Open.UserID,
			Username: deps.Auth.Open.Username,
			Groups:   deps.Auth.Open.Groups,
		}, deps.Logger), nil
	default:
		return nil, apperrors.ProviderConfigf("unknown auth mode %q", deps.Auth.Mode)
	}
}

func buildLocalProvider(deps ProviderDeps) (ports.AuthProvider, error) {
	users := make([]localauth.User, 0, len(deps.Auth.LocalUsers))
	for _, u := range deps.Auth.LocalUsers {
		users = append(users, localauth.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Groups:       u.Groups,
		})
	}

	prov, err := localauth.NewProvider(localauth.Options{
		Users:   users,
		Limiter: deps.Limiter,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, apperrors.ProviderConfigf("local users provider: %v", err)
	}
	return prov, nil
}

func buildOIDCProvider(ctx context.Context, deps ProviderDeps) (ports.AuthProvider, error) {
	cfg := deps.Auth.OIDC
	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		IssuerURL:    cfg.IssuerURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		GroupsClaim:  cfg.GroupsClaim,
		Logger:       deps.Logger,
	})
	if err != nil {
		return nil, apperrors.ProviderConfigf("oidc provider: %v", err)
	}
	return prov, nil
}

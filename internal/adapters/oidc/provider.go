// Package oidc provides the OpenID-Connect auth provider. Discovery runs once
// at construction; the provider metadata and signing keys are cached for the
// provider's lifetime. Unlike older revisions of this flow, the ID token
// signature IS verified against the provider's JWKS before any claim is
// trusted.
package oidc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	apperrors "github.com/esdeck/esdeck-api/internal/errors"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// ProviderType is the configuration tag for this provider.
const ProviderType = "oidc"

// DefaultGroupsClaim is the claim key group memberships are read from unless
// configured otherwise.
const DefaultGroupsClaim = "groups"

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// GroupsClaim is the ID-token claim carrying group memberships.
	// Empty means DefaultGroupsClaim.
	GroupsClaim string
	HTTPClient  *http.Client // Optional, defaults to a 30s-timeout client
	Logger      *slog.Logger
}

// Provider implements ports.RedirectAuthProvider using go-oidc and oauth2.
type Provider struct {
	config      *oauth2.Config
	provider    *gooidc.Provider
	verifier    *gooidc.IDTokenVerifier
	issuer      string
	clientID    string
	groupsClaim string
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.RedirectAuthProvider = (*Provider)(nil)

// NewProvider performs one-time discovery against the issuer and prepares the
// token verifier. Discovery failure is fatal to construction.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("oidc: issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("oidc: client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("oidc: redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	ctx = gooidc.ClientContext(ctx, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, apperrors.OIDCProtocol("provider discovery failed", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email", "groups"}
	}
	groupsClaim := cfg.GroupsClaim
	if groupsClaim == "" {
		groupsClaim = DefaultGroupsClaim
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		provider:    op,
		verifier:    op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		issuer:      issuer,
		clientID:    cfg.ClientID,
		groupsClaim: groupsClaim,
		logger:      logger.With("component", "oidc_auth"),
		now:         time.Now,
	}, nil
}

func (p *Provider) Type() string { return ProviderType }

// Begin returns the authorization URL for the caller-supplied anti-CSRF state.
func (p *Provider) Begin(_ context.Context, state string) (string, error) {
	if state == "" {
		return "", errors.New("oidc: state is required")
	}
	// AuthCodeURL percent-encodes every parameter and pins response_type=code.
	return p.config.AuthCodeURL(state), nil
}

// Authenticate exchanges the authorization code for tokens, verifies the ID
// token, validates its claims, and maps them to a domain identity. Every
// failure is logged with detail server-side and surfaced to the caller as a
// failed login.
func (p *Provider) Authenticate(ctx context.Context, req ports.AuthRequest) (domainauth.Identity, error) {
	if req.Code == "" {
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	token, err := p.config.Exchange(ctx, req.Code)
	if err != nil {
		p.logger.WarnContext(ctx, "oidc token exchange failed", "error", err)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		p.logger.WarnContext(ctx, "oidc token response carried no id_token")
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	// Signature check against the cached JWKS, plus the verifier's own
	// issuer/audience/expiry validation.
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		p.logger.WarnContext(ctx, "oidc id_token verification failed", "error", err)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	var claims IDTokenClaims
	if err := idToken.Claims(&claims.known); err != nil {
		p.logger.WarnContext(ctx, "oidc id_token claims decode failed", "error", err)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}
	if err := idToken.Claims(&claims.Extra); err != nil {
		p.logger.WarnContext(ctx, "oidc id_token extra claims decode failed", "error", err)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	// Re-validated explicitly so a misconfigured verifier can never silently
	// widen the trust boundary.
	if err := claims.Validate(p.issuer, p.clientID, p.now()); err != nil {
		p.logger.WarnContext(ctx, "oidc claim validation failed", "error", err)
		return domainauth.Identity{}, ports.ErrAuthenticationFailed
	}

	identity := domainauth.Identity{
		UserID:   claims.Subject(),
		Username: claims.DisplayName(),
		Groups:   claims.Groups(p.groupsClaim),
	}

	p.logger.InfoContext(ctx, "oidc login verified",
		"subject", identity.UserID,
		"username", identity.Username,
		"groups", len(identity.Groups),
	)
	return identity, nil
}

// Endpoint exposes the discovered endpoints for diagnostics.
func (p *Provider) Endpoint() oauth2.Endpoint {
	return p.config.Endpoint
}

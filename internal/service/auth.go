package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/observability/metrics"
	"github.com/esdeck/esdeck-api/internal/observability/statsd"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider   // Required: configured auth provider
	Sessions ports.SessionStore   // Required: session persistence
	Access   ports.AccessResolver // Required: group to cluster resolution
	Catalog  ports.ClusterCatalog // Required: source of candidate cluster IDs
	Audit    ports.AuditRecorder  // Optional: login audit trail
	Logger   *slog.Logger         // Optional: structured logger
	Metrics  statsd.Sink          // Optional: metrics sink (StatsD-compatible)
}

// AuthService orchestrates authentication: it runs the configured provider,
// reduces the resulting group memberships to accessible clusters, and owns
// the session lifecycle around both.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	access   ports.AccessResolver
	catalog  ports.ClusterCatalog
	audit    ports.AuditRecorder
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("AuthProvider is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Access == nil {
		return nil, errors.New("AccessResolver is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("ClusterCatalog is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		access:   opts.Access,
		catalog:  opts.Catalog,
		audit:    opts.Audit,
		logger:   logger.With("component", "auth_service"),
		metrics:  opts.Metrics,
	}, nil
}

// LoginResult carries the session handed to the browser and the resolved user.
type LoginResult struct {
	Session domainauth.Session
	User    domainauth.AuthUser
}

// Login runs the provider against the request and mints a session on success.
// Every credential failure comes back as ports.ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, req ports.AuthRequest) (*LoginResult, error) {
	start := time.Now()

	identity, err := s.provider.Authenticate(ctx, req)
	if err != nil {
		metrics.EmitLogin(s.metrics, metrics.LoginMetric{
			Provider: s.provider.Type(),
			Result:   metrics.ResultFailure,
			Duration: time.Since(start),
			Err:      err,
		})
		s.recordAudit(ctx, ports.AuditEvent{
			Kind:     ports.AuditLoginFailure,
			Username: req.Username,
			RemoteIP: req.RemoteIP,
		})
		if errors.Is(err, ports.ErrAuthenticationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	user := s.resolveUser(identity)
	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.EmitLogin(s.metrics, metrics.LoginMetric{
		Provider: s.provider.Type(),
		Result:   metrics.ResultSuccess,
		Duration: time.Since(start),
	})
	metrics.EmitSessionCreated(s.metrics, s.provider.Type())
	s.recordAudit(ctx, ports.AuditEvent{
		Kind:     ports.AuditLoginSuccess,
		Username: user.Username,
		RemoteIP: req.RemoteIP,
	})
	s.logger.InfoContext(ctx, "login succeeded",
		"provider", s.provider.Type(),
		"username", user.Username,
		"clusters", len(user.AccessibleClusters),
	)

	return &LoginResult{Session: session, User: user}, nil
}

// BeginRedirect returns the external authorization URL for redirect-flow
// providers. state is the anti-CSRF value the caller will verify on callback.
func (s *AuthService) BeginRedirect(ctx context.Context, state string) (string, error) {
	redirect, ok := s.provider.(ports.RedirectAuthProvider)
	if !ok {
		return "", fmt.Errorf("provider %q does not support redirect login", s.provider.Type())
	}
	authURL, err := redirect.Begin(ctx, state)
	if err != nil {
		return "", fmt.Errorf("begin redirect login: %w", err)
	}
	return authURL, nil
}

// Resolve validates a session token and rehydrates the user behind it,
// including a fresh cluster-access resolution. Cluster grants can change
// between requests without forcing a re-login.
func (s *AuthService) Resolve(ctx context.Context, token string) (domainauth.AuthUser, domainauth.Session, error) {
	session, err := s.sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return domainauth.AuthUser{}, domainauth.Session{}, err
		}
		return domainauth.AuthUser{}, domainauth.Session{}, fmt.Errorf("validate session: %w", err)
	}

	user := s.resolveUser(domainauth.Identity{
		UserID:   session.UserID,
		Username: session.Username,
		Groups:   session.Roles,
	})
	return user, session, nil
}

// Logout invalidates the session. Unknown tokens are not an error; the
// outcome is the same either way.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	metrics.EmitLogout(s.metrics)
	s.recordAudit(ctx, ports.AuditEvent{Kind: ports.AuditLogout})
	return nil
}

// ProviderType reports which provider this service was built with.
func (s *AuthService) ProviderType() string {
	return s.provider.Type()
}

func (s *AuthService) resolveUser(identity domainauth.Identity) domainauth.AuthUser {
	accessible := resolveAccessible(s.access, s.catalog, identity.Groups)
	return domainauth.AuthUser{
		ID:                 identity.UserID,
		Username:           identity.Username,
		Groups:             append([]string(nil), identity.Groups...),
		AccessibleClusters: accessible,
	}
}

// resolveAccessible reduces group memberships to accessible clusters. A
// wildcard group grants everything before the tables are consulted; the
// open provider's dev principal depends on that.
func resolveAccessible(access ports.AccessResolver, catalog ports.ClusterCatalog, groups []string) []string {
	for _, g := range groups {
		if g == domainauth.Wildcard {
			return []string{domainauth.Wildcard}
		}
	}
	return access.ResolveClusterAccess(groups, catalog.ClusterIDs())
}

// recordAudit is best-effort; a broken audit store never fails the request.
func (s *AuthService) recordAudit(ctx context.Context, event ports.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit record failed", "kind", event.Kind, "error", err)
	}
}

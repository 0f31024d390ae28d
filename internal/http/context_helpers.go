package httpx

import (
	"context"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
)

// authUserKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers/middleware use the same key.
type authUserKey struct{}

type sessionKey struct{}

// SetAuthUserInContext returns a child context carrying the resolved user.
func SetAuthUserInContext(ctx context.Context, user domainauth.AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey{}, user)
}

// GetAuthUserFromContext returns the authenticated user and whether one is present.
func GetAuthUserFromContext(ctx context.Context) (domainauth.AuthUser, bool) {
	user, ok := ctx.Value(authUserKey{}).(domainauth.AuthUser)
	return user, ok
}

// SetSessionInContext returns a child context carrying the validated session.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session and whether one is present.
func GetSessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	return session, ok
}

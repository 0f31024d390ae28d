package httpx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
	"github.com/esdeck/esdeck-api/internal/service"
)

// AuthServiceInterface defines the auth service operations the handlers use.
type AuthServiceInterface interface {
	Login(ctx context.Context, req ports.AuthRequest) (*service.LoginResult, error)
	BeginRedirect(ctx context.Context, state string) (string, error)
	Resolve(ctx context.Context, token string) (domainauth.AuthUser, domainauth.Session, error)
	Logout(ctx context.Context, token string) error
	ProviderType() string
}

const oidcStateCookie = "esdeck_oidc_state"

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Groups             []string `json:"groups"`
	AccessibleClusters []string `json:"accessible_clusters"`
}

func toUserResponse(user domainauth.AuthUser) userResponse {
	return userResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Groups:             user.Groups,
		AccessibleClusters: user.AccessibleClusters,
	}
}

// Login handles credential login.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Login(r.Context(), ports.AuthRequest{
		Username: req.Username,
		Password: req.Password,
		RemoteIP: remoteIP(r),
	})
	if err != nil {
		if errors.Is(err, ports.ErrAuthenticationFailed) {
			// One uniform answer for every credential failure.
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_failed",
				Err:     ports.ErrAuthenticationFailed,
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("login failed"),
		})
		return
	}

	setSessionCookie(w, r, result.Session.Token, result.Session.ExpiresAt)
	WriteJSON(w, http.StatusOK, toUserResponse(result.User))
}

// Logout invalidates the server-side session and clears the cookie.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.Svc.Logout(r.Context(), cookie.Value); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	clearSessionCookie(w, r)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user. Runs behind RequireAuth.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUserFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// OIDCStart redirects the browser to the identity provider.
// GET /auth/oidc/start.
func (h *AuthHandlers) OIDCStart(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "state_generation_failed",
			Err:     errors.New("could not begin login"),
		})
		return
	}

	authURL, err := h.Svc.BeginRedirect(r.Context(), state)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "oidc start failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not begin login"),
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oidcStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OIDCCallback finishes the redirect flow: verifies state, exchanges the
// code, and mints the session.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_callback",
			Err:     errors.New("code and state parameters are required"),
		})
		return
	}

	stateCookie, err := r.Cookie(oidcStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	clearCookie(w, r, oidcStateCookie)

	result, err := h.Svc.Login(r.Context(), ports.AuthRequest{
		Code:     code,
		RemoteIP: remoteIP(r),
	})
	if err != nil {
		if errors.Is(err, ports.ErrAuthenticationFailed) {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_failed",
				Err:     ports.ErrAuthenticationFailed,
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "oidc callback failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("login failed"),
		})
		return
	}

	setSessionCookie(w, r, result.Session.Token, result.Session.ExpiresAt)
	http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirect_uri")), http.StatusFound)
}

// safeRedirect allows only same-origin relative paths, defaulting to root.
func safeRedirect(target string) string {
	if target == "" {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return target
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

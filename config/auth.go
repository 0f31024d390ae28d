package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuthMode selects which authentication provider the server is built
// with. Exactly one provider is active per process.
type AuthMode string

const (
	AuthModeLocalUsers AuthMode = "local_users"
	AuthModeOIDC       AuthMode = "oidc"
	AuthModeOpen       AuthMode = "open"
)

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (m *AuthMode) UnmarshalText(text []byte) error {
	v := AuthMode(text)
	switch v {
	case AuthModeLocalUsers, AuthModeOIDC, AuthModeOpen:
		*m = v
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: local_users, oidc, open)", v)
	}
}

// AuthConfig holds the provider selection plus per-provider settings.
// Only the block matching Mode is consulted at build time.
type AuthConfig struct {
	Mode AuthMode `env:"AUTH_MODE" envDefault:"local_users"`

	LocalUsers LocalUsers     `env:"AUTH_LOCAL_USERS"`
	OIDC       OIDCConfig     `envPrefix:"OIDC_"`
	Open       OpenAuthConfig `envPrefix:"AUTH_OPEN_"`
}

func (c *AuthConfig) Sanitize() {
	c.OIDC.Sanitize()
	c.Open.Sanitize()
}

func (c *AuthConfig) Validate(isDev bool) error {
	switch c.Mode {
	case AuthModeLocalUsers:
		if len(c.LocalUsers) == 0 {
			return fmt.Errorf("config: AUTH_MODE=local_users requires AUTH_LOCAL_USERS")
		}
		for i, u := range c.LocalUsers {
			if u.Username == "" || u.PasswordHash == "" {
				return fmt.Errorf("config: AUTH_LOCAL_USERS entry %d is missing username or password_hash", i)
			}
		}
	case AuthModeOIDC:
		return c.OIDC.Validate()
	case AuthModeOpen:
		if !isDev {
			return fmt.Errorf("config: AUTH_MODE=open is only permitted in dev mode")
		}
	}
	return nil
}

// LocalUserEntry is one statically configured account. PasswordHash is
// a bcrypt hash, never a cleartext password.
type LocalUserEntry struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"`
	Groups       []string `json:"groups"`
}

// LocalUsers parses a JSON array from a single env value.
type LocalUsers []LocalUserEntry

func (u *LocalUsers) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = nil
		return nil
	}
	var entries []LocalUserEntry
	if err := json.Unmarshal(text, &entries); err != nil {
		return fmt.Errorf("parsing AUTH_LOCAL_USERS: %w", err)
	}
	*u = entries
	return nil
}

// OIDCConfig configures the OpenID Connect provider. Discovery runs
// against the issuer's well-known endpoint at startup.
type OIDCConfig struct {
	IssuerURL    string   `env:"ISSUER_URL"`
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURL  string   `env:"REDIRECT_URL"`
	Scopes       []string `env:"SCOPES" envSeparator:"," envDefault:"openid,profile,email,groups"`
	GroupsClaim  string   `env:"GROUPS_CLAIM" envDefault:"groups"`
}

func (c *OIDCConfig) Sanitize() {
	if c.GroupsClaim == "" {
		c.GroupsClaim = "groups"
	}
}

func (c *OIDCConfig) Validate() error {
	if c.IssuerURL == "" {
		return fmt.Errorf("config: AUTH_MODE=oidc requires OIDC_ISSUER_URL")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("config: AUTH_MODE=oidc requires OIDC_CLIENT_ID and OIDC_CLIENT_SECRET")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("config: AUTH_MODE=oidc requires OIDC_REDIRECT_URL")
	}
	return nil
}

// OpenAuthConfig describes the fixed identity returned by the open
// provider. Dev only; Validate enforces that.
type OpenAuthConfig struct {
	UserID   string   `env:"USER_ID" envDefault:"dev"`
	Username string   `env:"USERNAME" envDefault:"dev"`
	Groups   []string `env:"GROUPS" envSeparator:"," envDefault:"admins"`
}

func (c *OpenAuthConfig) Sanitize() {
	if c.Username == "" {
		c.Username = "dev"
	}
	if c.UserID == "" {
		c.UserID = c.Username
	}
}

// SessionBackend selects where sessions are stored.
type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendRedis  SessionBackend = "redis"
)

func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := SessionBackend(text)
	switch v {
	case SessionBackendMemory, SessionBackendRedis:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: memory, redis)", v)
	}
}

// SessionConfig controls session lifetime and storage.
type SessionConfig struct {
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"memory"`
	Timeout time.Duration  `env:"SESSION_TIMEOUT" envDefault:"1h"`
}

func (c *SessionConfig) Sanitize() {
	if c.Timeout < time.Minute {
		c.Timeout = time.Minute
	}
}

// RateLimitConfig bounds failed login attempts per username and per
// source IP within a sliding window.
type RateLimitConfig struct {
	MaxAttempts   int           `env:"RATE_LIMIT_MAX_ATTEMPTS" envDefault:"5"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"5m"`
	BlockDuration time.Duration `env:"RATE_LIMIT_BLOCK" envDefault:"15m"`
}

func (c *RateLimitConfig) Sanitize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.Window <= 0 {
		c.Window = 5 * time.Minute
	}
	if c.BlockDuration <= 0 {
		c.BlockDuration = 15 * time.Minute
	}
}

package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) *AppConfig {
	t.Helper()
	cfg := &AppConfig{}
	require.NoError(t, env.Parse(cfg))
	cfg.Sanitize()
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.Equal(t, AuthModeLocalUsers, cfg.Auth.Mode)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, time.Hour, cfg.Session.Timeout)
	assert.Equal(t, 5, cfg.RateLimit.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestAuthModeParsing(t *testing.T) {
	t.Setenv("AUTH_MODE", "oidc")
	cfg := parseConfig(t)
	assert.Equal(t, AuthModeOIDC, cfg.Auth.Mode)

	t.Setenv("AUTH_MODE", "basic")
	err := env.Parse(&AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestLocalUsersFromJSON(t *testing.T) {
	t.Setenv("AUTH_LOCAL_USERS", `[{"username":"alice","password_hash":"$2a$10$x","groups":["ops"]}]`)
	cfg := parseConfig(t)

	require.Len(t, cfg.Auth.LocalUsers, 1)
	assert.Equal(t, "alice", cfg.Auth.LocalUsers[0].Username)
	assert.Equal(t, []string{"ops"}, cfg.Auth.LocalUsers[0].Groups)
}

func TestClustersFromJSON(t *testing.T) {
	t.Setenv("CLUSTERS", `[{"id":"prod","url":"http://es-prod:9200","username":"admin","password":"s"}]`)
	cfg := parseConfig(t)

	require.Len(t, cfg.Clusters.Entries, 1)
	assert.Equal(t, "prod", cfg.Clusters.Entries[0].ID)
}

func TestClustersRejectDuplicates(t *testing.T) {
	t.Setenv("CLUSTERS", `[{"id":"a","url":"http://x"},{"id":"a","url":"http://y"}]`)
	err := env.Parse(&AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cluster id")
}

func TestAccessTablesFromJSON(t *testing.T) {
	t.Setenv("ACCESS_ROLES", `[{"name":"ops","cluster_patterns":["prod-*"]}]`)
	t.Setenv("ACCESS_GROUP_MAPPINGS", `[{"group":"admins","clusters":["*"]}]`)
	cfg := parseConfig(t)

	require.Len(t, cfg.Access.Roles, 1)
	assert.Equal(t, []string{"prod-*"}, cfg.Access.Roles[0].ClusterPatterns)
	require.Len(t, cfg.Access.Groups, 1)
	assert.Equal(t, []string{"*"}, cfg.Access.Groups[0].Clusters)
}

func TestValidateOpenModeRequiresDev(t *testing.T) {
	t.Setenv("AUTH_MODE", "open")
	t.Setenv("CLUSTERS", `[{"id":"a","url":"http://x"}]`)
	cfg := parseConfig(t)

	cfg.IsDev = false
	require.Error(t, cfg.Validate())

	cfg.IsDev = true
	assert.NoError(t, cfg.Validate())
}

func TestValidateLocalUsersRequired(t *testing.T) {
	t.Setenv("CLUSTERS", `[{"id":"a","url":"http://x"}]`)
	cfg := parseConfig(t)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_LOCAL_USERS")
}

func TestValidateRedisBackendNeedsAddr(t *testing.T) {
	t.Setenv("AUTH_LOCAL_USERS", `[{"username":"a","password_hash":"h"}]`)
	t.Setenv("CLUSTERS", `[{"id":"a","url":"http://x"}]`)
	t.Setenv("SESSION_BACKEND", "redis")
	cfg := parseConfig(t)

	require.Error(t, cfg.Validate())

	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg = parseConfig(t)
	assert.NoError(t, cfg.Validate())
}

func TestSanitizeClampsValues(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_MAX_ATTEMPTS", "0")
	t.Setenv("SWEEP_INTERVAL", "1s")
	cfg := parseConfig(t)

	assert.Equal(t, time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 5, cfg.RateLimit.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
}

func TestObservabilitySanitizeDisablesWithoutAddress(t *testing.T) {
	// The env default always supplies an address; the guard covers configs
	// built in code, where an empty address means nowhere to send metrics.
	cfg := ObservabilityConfig{MetricsEnabled: true}
	cfg.Sanitize()
	assert.False(t, cfg.MetricsEnabled)

	cfg = ObservabilityConfig{MetricsEnabled: true, StatsdAddress: "127.0.0.1:8125"}
	cfg.Sanitize()
	assert.True(t, cfg.MetricsEnabled)
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	assert.False(t, detectDevMode())

	t.Setenv("APP_ENV", "dev")
	assert.True(t, detectDevMode())

	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "development")
	assert.True(t, detectDevMode())
}

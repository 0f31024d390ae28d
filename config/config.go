// Package config defines the environment-driven configuration for the
// esdeck API and its sanitization rules. All values are read from
// environment variables via caarlos0/env struct tags; bootstrap is
// responsible for loading .env files before parsing.
package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig is the root configuration for every esdeck process.
type AppConfig struct {
	IsDev bool `env:"-"`

	Auth      AuthConfig
	Access    AccessConfig
	Clusters  ClustersConfig
	Session   SessionConfig
	RateLimit RateLimitConfig

	HTTP          HTTPConfig
	Redis         RedisConfig `envPrefix:"REDIS_"`
	Audit         AuditDBConfig
	Sweeper       SweeperConfig
	Observability ObservabilityConfig
}

// Sanitize normalizes values and applies defaults that depend on other
// fields. Call it once after env parsing, before Validate.
func (c *AppConfig) Sanitize() {
	c.IsDev = detectDevMode()
	c.Auth.Sanitize()
	c.Session.Sanitize()
	c.RateLimit.Sanitize()
	c.HTTP.Sanitize()
	c.Sweeper.Sanitize()
	c.Observability.Sanitize()
}

// Validate rejects configurations that must never reach a running
// process, such as open auth outside dev mode.
func (c *AppConfig) Validate() error {
	if err := c.Auth.Validate(c.IsDev); err != nil {
		return err
	}
	if c.Session.Backend == SessionBackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("config: SESSION_BACKEND=redis requires REDIS_ADDR")
	}
	if len(c.Clusters.Entries) == 0 {
		return fmt.Errorf("config: at least one cluster must be configured via CLUSTERS")
	}
	return nil
}

// detectDevMode mirrors the conventional NODE_ENV switch so local
// tooling and container images can share one flag.
func detectDevMode() bool {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("NODE_ENV"))
	}
	switch env {
	case "", "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

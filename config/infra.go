package config

import "time"

// HTTPConfig controls the listener and cookie behavior.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func (c *HTTPConfig) Sanitize() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// RedisConfig is consulted only when SESSION_BACKEND=redis.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// AuditDBConfig configures the optional Postgres audit trail. When
// Enabled is false no connection is opened and auditing is skipped.
type AuditDBConfig struct {
	Enabled   bool          `env:"AUDIT_DB_ENABLED" envDefault:"false"`
	DSN       string        `env:"AUDIT_DB_DSN"`
	Retention time.Duration `env:"AUDIT_RETENTION" envDefault:"720h"`
}

// SweeperConfig controls the background expiry sweep.
type SweeperConfig struct {
	Interval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

func (c *SweeperConfig) Sanitize() {
	if c.Interval < 30*time.Second {
		c.Interval = 5 * time.Minute
	}
}

// ObservabilityConfig controls the statsd exporter.
type ObservabilityConfig struct {
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	StatsdAddress  string `env:"STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	StatsdPrefix   string `env:"STATSD_PREFIX" envDefault:"esdeck"`
}

func (c *ObservabilityConfig) Sanitize() {
	if c.StatsdAddress == "" {
		c.MetricsEnabled = false
	}
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/esdeck/esdeck-api/config"
	"github.com/esdeck/esdeck-api/internal/adapters/accessmap"
	"github.com/esdeck/esdeck-api/internal/adapters/elastic"
	"github.com/esdeck/esdeck-api/internal/adapters/memstore"
	"github.com/esdeck/esdeck-api/internal/adapters/postgres"
	"github.com/esdeck/esdeck-api/internal/adapters/ratelimit"
	redisadapter "github.com/esdeck/esdeck-api/internal/adapters/redis"
	"github.com/esdeck/esdeck-api/internal/observability/statsd"
	"github.com/esdeck/esdeck-api/internal/ports"
	"github.com/esdeck/esdeck-api/internal/service"
)

// ServiceContainer holds the built application services and the shared
// infrastructure handles main must close on exit.
type ServiceContainer struct {
	Auth    *service.AuthService
	Sweeper *service.Sweeper
	Catalog ports.ClusterCatalog

	Metrics *statsd.Client
	Redis   goredis.UniversalClient
	Audit   *postgres.AuditRepo

	closers []func() error
}

// Close releases infrastructure handles in reverse build order.
func (c *ServiceContainer) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewServices builds every adapter and service from configuration.
// Construction is fail-fast: a broken dependency aborts startup.
func NewServices(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*ServiceContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	container := &ServiceContainer{}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.MetricsEnabled,
		Address: cfg.Observability.StatsdAddress,
		Prefix:  cfg.Observability.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialise statsd client", "error", err)
	} else {
		container.Metrics = metrics
		container.closers = append(container.closers, metrics.Close)
	}

	catalog, err := buildCatalog(cfg.Clusters, logger)
	if err != nil {
		return nil, err
	}
	container.Catalog = catalog

	sessions, err := buildSessionStore(ctx, cfg, container, logger)
	if err != nil {
		return nil, fmt.Errorf("build session store: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{
		MaxAttempts:   cfg.RateLimit.MaxAttempts,
		Window:        cfg.RateLimit.Window,
		BlockDuration: cfg.RateLimit.BlockDuration,
	})

	provider, err := BuildAuthProvider(ctx, ProviderDeps{
		Auth:    cfg.Auth,
		IsDev:   cfg.IsDev,
		Limiter: limiter,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth provider: %w", err)
	}

	audit, err := buildAuditRepo(ctx, cfg.Audit, container, logger)
	if err != nil {
		return nil, fmt.Errorf("build audit repo: %w", err)
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Access:   buildAccessResolver(cfg.Access),
		Catalog:  catalog,
		Audit:    auditOrNil(audit),
		Logger:   logger,
		Metrics:  container.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}
	container.Auth = auth

	sweeper, err := service.NewSweeper(service.SweeperOptions{
		Sessions: sessions,
		Limiter:  limiter,
		Interval: cfg.Sweeper.Interval,
		Logger:   logger,
		Metrics:  container.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build sweeper: %w", err)
	}
	container.Sweeper = sweeper

	return container, nil
}

func buildCatalog(cfg config.ClustersConfig, logger *slog.Logger) (*elastic.Catalog, error) {
	conns := make([]elastic.ClusterConn, 0, len(cfg.Entries))
	for _, c := range cfg.Entries {
		conns = append(conns, elastic.ClusterConn{
			ID:       c.ID,
			Name:     c.Name,
			URL:      c.URL,
			Username: c.Username,
			Password: c.Password,
		})
	}
	catalog, err := elastic.NewCatalog(elastic.Options{
		Clusters: conns,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build cluster catalog: %w", err)
	}
	return catalog, nil
}

func buildSessionStore(
	ctx context.Context,
	cfg *config.AppConfig,
	container *ServiceContainer,
	logger *slog.Logger,
) (ports.SessionStore, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		container.Redis = client
		container.closers = append(container.closers, client.Close)
		logger.InfoContext(ctx, "using redis session store", "addr", cfg.Redis.Addr)
		return redisadapter.NewSessionStore(client, cfg.Session.Timeout), nil
	default:
		return memstore.NewSessionStore(cfg.Session.Timeout), nil
	}
}

// buildAccessResolver unions whichever tables are configured. With no
// tables the composite denies everything, which is the right default.
func buildAccessResolver(cfg config.AccessConfig) ports.AccessResolver {
	var resolvers []ports.AccessResolver
	if len(cfg.Roles) > 0 {
		resolvers = append(resolvers, accessmap.NewRoleResolver(cfg.Roles))
	}
	if len(cfg.Groups) > 0 {
		resolvers = append(resolvers, accessmap.NewGroupResolver(cfg.Groups))
	}
	return accessmap.NewComposite(resolvers...)
}

func buildAuditRepo(
	ctx context.Context,
	cfg config.AuditDBConfig,
	container *ServiceContainer,
	logger *slog.Logger,
) (*postgres.AuditRepo, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("AUDIT_DB_ENABLED requires AUDIT_DB_DSN")
	}

	db, err := postgres.Open(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	container.closers = append(container.closers, db.Close)

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	repo := postgres.NewAuditRepo(db)
	container.Audit = repo
	logger.InfoContext(ctx, "audit trail enabled", "retention", cfg.Retention.String())
	return repo, nil
}

// auditOrNil keeps the service's optional-dependency check honest: a
// typed nil pointer must not masquerade as a present recorder.
func auditOrNil(repo *postgres.AuditRepo) ports.AuditRecorder {
	if repo == nil {
		return nil
	}
	return repo
}

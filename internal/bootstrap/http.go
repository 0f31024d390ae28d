package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/esdeck/esdeck-api/config"
	httpx "github.com/esdeck/esdeck-api/internal/http"
)

// NewHTTPServer builds the configured listener around the API router.
func NewHTTPServer(cfg config.HTTPConfig, services *ServiceContainer, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Auth:    services.Auth,
		Catalog: services.Catalog,
		Logger:  logger,
	})

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// Run starts the HTTP server, the expiry sweeper, and the audit prune
// loop, then blocks until a signal arrives or one of them fails. The
// remaining components are stopped before Run returns.
func Run(ctx context.Context, cfg *config.AppConfig, services *ServiceContainer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(cfg.HTTP, services, logger)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.InfoContext(groupCtx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		return services.Sweeper.Run(groupCtx)
	})

	if services.Audit != nil {
		group.Go(func() error {
			runAuditPrune(groupCtx, services, cfg.Audit.Retention, logger)
			return nil
		})
	}

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("all services stopped")
	return nil
}

// runAuditPrune removes audit rows older than the retention window,
// once at startup and then daily. Prune failures are logged, not fatal.
func runAuditPrune(ctx context.Context, services *ServiceContainer, retention time.Duration, logger *slog.Logger) {
	if retention <= 0 {
		return
	}

	prune := func() {
		removed, err := services.Audit.Prune(ctx, retention)
		if err != nil {
			logger.WarnContext(ctx, "audit prune failed", "error", err)
			return
		}
		if removed > 0 {
			logger.InfoContext(ctx, "pruned audit events", "removed", removed)
		}
	}

	prune()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

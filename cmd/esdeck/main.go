// Command esdeck serves the cluster administration API: authentication,
// session management, and access-controlled Elasticsearch passthrough.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/esdeck/esdeck-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting esdeck",
		"auth_mode", cfg.Auth.Mode,
		"session_backend", cfg.Session.Backend,
		"clusters", len(cfg.Clusters.Entries),
		"dev", cfg.IsDev)

	services, err := bootstrap.NewServices(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close services failed", "error", cerr)
		}
	}()

	return bootstrap.Run(ctx, &cfg, services, logger)
}

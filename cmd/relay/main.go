// Command relay runs the callback relay: the server that accepts
// asynchronous workflow results and lets clients poll for them.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/wholesomegoods/callback-relay/config"
	"github.com/wholesomegoods/callback-relay/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	return bootstrap.Run(ctx, &cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting callback relay",
		"addr", cfg.HTTP.Addr,
		"base_url", cfg.HTTP.BaseURL,
		"store_backend", cfg.Store.Backend,
		"store_ttl", cfg.Store.TTL,
		"static_dir", cfg.HTTP.StaticDir,
		"dev", cfg.IsDev)
}

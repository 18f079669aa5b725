package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wholesomegoods/callback-relay/config"
	"github.com/wholesomegoods/callback-relay/internal/core"
	"github.com/wholesomegoods/callback-relay/internal/service"
)

// Run connects the store, starts the HTTP server and the expiry
// sweeper, and blocks until a shutdown signal or a fatal error.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handle, err := BuildStore(runCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close store failed", "error", cerr)
		}
	}()

	results := service.NewResultService(service.ResultServiceOptions{
		Store:  handle.Store,
		Logger: logger,
	})

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:  cfg,
		Results: results,
		Logger:  logger,
	}, errCh)

	group, groupCtx := errgroup.WithContext(runCtx)

	if sweeper, ok := handle.Store.(core.Sweeper); ok && cfg.Store.TTL > 0 {
		group.Go(func() error {
			runSweeper(groupCtx, sweeper, cfg.Store.SweepInterval, logger)
			return nil
		})
	}

	group.Go(func() error {
		err := waitForShutdown(groupCtx, errCh, logger)
		cancel()
		return err
	})

	waitErr := group.Wait()

	if serr := ShutdownHTTPServer(context.Background(), server, logger); serr != nil && waitErr == nil {
		waitErr = serr
	}
	return waitErr
}

// runSweeper reclaims expired records on a fixed timer until ctx ends.
func runSweeper(ctx context.Context, sweeper core.Sweeper, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.ErrorContext(ctx, "sweep expired results failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.InfoContext(ctx, "swept expired results", "removed", removed)
			}
		}
	}
}

// waitForShutdown blocks until SIGINT/SIGTERM, a server error, or
// context cancellation.
func waitForShutdown(ctx context.Context, errCh <-chan error, logger *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

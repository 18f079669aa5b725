package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Register the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wholesomegoods/callback-relay/config"
	"github.com/wholesomegoods/callback-relay/internal/core"
	"github.com/wholesomegoods/callback-relay/internal/data"
	"github.com/wholesomegoods/callback-relay/internal/migrate"
)

const connectTimeout = 5 * time.Second

// StoreHandle bundles a store backend with its cleanup function.
type StoreHandle struct {
	Store core.ResultStore
	// Close releases the backend connection; nil-safe no-op for the
	// memory backend.
	Close func() error
}

// BuildStore connects the configured store backend. The memory backend
// needs no connection; redis and postgres are pinged before use so a
// misconfigured relay fails at startup, not on the first callback.
func BuildStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*StoreHandle, error) {
	backend, err := cfg.Store.ParseBackend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.StoreBackendMemory:
		store := data.NewMemoryStore(data.MemoryStoreOptions{
			TTL:        cfg.Store.TTL,
			MaxEntries: cfg.Store.MaxEntries,
		})
		return &StoreHandle{Store: store, Close: func() error { return nil }}, nil

	case config.StoreBackendRedis:
		return buildRedisStore(ctx, cfg, logger)

	case config.StoreBackendPostgres:
		return buildPostgresStore(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unhandled store backend %q", backend)
	}
}

func buildRedisStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*StoreHandle, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis after ping failure", "error", cerr)
		}
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Redis.Addr, err)
	}

	store, err := data.NewRedisStore(data.RedisStoreOptions{Client: client, TTL: cfg.Store.TTL})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "redis result store connected", "addr", cfg.Redis.Addr)
	return &StoreHandle{Store: store, Close: client.Close}, nil
}

func buildPostgresStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*StoreHandle, error) {
	db, err := sql.Open("pgx", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close postgres after ping failure", "error", cerr)
		}
		return nil, fmt.Errorf("connect postgres at %s:%d: %w", cfg.Postgres.Host, cfg.Postgres.Port, err)
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err := migrate.Run(ctx, db); err != nil {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close postgres after migration failure", "error", cerr)
			}
			return nil, err
		}
	} else {
		logger.InfoContext(ctx, "skipping migrations on startup", "reason", "disabled via config")
	}

	store, err := data.NewPostgresStore(data.PostgresStoreOptions{DB: db, TTL: cfg.Store.TTL})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "postgres result store connected",
		"host", cfg.Postgres.Host, "db", cfg.Postgres.Name)
	return &StoreHandle{Store: store, Close: db.Close}, nil
}

package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/wholesomegoods/callback-relay/config"
	httpx "github.com/wholesomegoods/callback-relay/internal/http"
	"github.com/wholesomegoods/callback-relay/internal/service"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config  *config.AppConfig
	Results *service.ResultService
	Logger  *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server. Returns the
// server instance for graceful shutdown; startup errors surface on
// errCh.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:  logger,
		Results: cfg.Results,
		HTTP:    appCfg.HTTP,
	})

	return startServer(logger, handler, appCfg.HTTP.Addr, errCh)
}

type httpHandlerConfig struct {
	Logger  *slog.Logger
	Results *service.ResultService
	HTTP    config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(httpx.RouterServices{
		Results:   cfg.Results,
		StaticDir: cfg.HTTP.StaticDir,
		Logger:    cfg.Logger,
	})

	// Order: Recover -> Logging -> CORS -> MaxBody -> Router
	h := httpx.MaxBody(cfg.HTTP.MaxBodyBytes)(router)
	if cfg.HTTP.CORSEnabled {
		h = httpx.CORS()(h)
	}
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}

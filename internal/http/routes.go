package httpx

import (
	"log/slog"
	"net/http"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
	"github.com/wholesomegoods/callback-relay/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Results *service.ResultService
	// StaticDir, when set, serves the built frontend with an
	// index.html fallback for non-API routes.
	StaticDir string
	Logger    *slog.Logger
}

// NewRouter creates and configures the relay's HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	callbackHandlers := &CallbackHandlers{Svc: services.Results, Logger: services.Logger}
	resultHandlers := &ResultHandlers{Svc: services.Results, Logger: services.Logger}
	healthHandlers := &HealthHandlers{Svc: services.Results}

	mux.HandleFunc("POST /callback", callbackHandlers.Callback)
	mux.HandleFunc("GET /result/{job_id}", resultHandlers.Result)
	// A bare or trailing-slash result URL yields no identifier; answer
	// 400 rather than falling through to the SPA handler.
	mux.HandleFunc("GET /result", missingJobID)
	mux.HandleFunc("GET /result/", missingJobID)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.HandleFunc("GET /readyz", healthHandlers.Ready)

	if services.StaticDir != "" {
		mux.Handle("GET /", spaHandler(services.StaticDir))
	}

	return mux
}

func missingJobID(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusBadRequest, model.ErrJobIDMissing)
}

package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/wholesomegoods/callback-relay/internal/service"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// HealthHandlers exposes readiness including the store backend.
type HealthHandlers struct {
	Svc *service.ResultService
}

// Ready handles GET /readyz: 200 when the store backend answers, 503
// otherwise.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Health(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, errors.New("store unavailable"))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/wholesomegoods/callback-relay/internal/errors"
	"github.com/wholesomegoods/callback-relay/internal/service"
)

// errInternal is the only detail clients get for unexpected failures.
var errInternal = errors.New("Internal error")

// ResultHandlers serves stored workflow results to polling clients.
type ResultHandlers struct {
	Svc    *service.ResultService
	Logger *slog.Logger
}

// Result handles GET /result/{job_id}. Absence answers 204 (not
// ready), never an error: the store cannot distinguish "never
// submitted" from "pending". Repeated polls are side-effect free and
// return the same value until a later callback overwrites it.
func (h *ResultHandlers) Result(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	rec, err := h.Svc.Fetch(r.Context(), jobID)
	if err != nil {
		if apperrors.IsValidation(err) {
			WriteError(w, http.StatusBadRequest, err)
			return
		}
		h.logger().ErrorContext(r.Context(), "fetch result failed",
			"job_id", jobID, "error", err)
		WriteError(w, http.StatusInternalServerError, errInternal)
		return
	}

	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	WriteJSON(w, http.StatusOK, rec)
}

func (h *ResultHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

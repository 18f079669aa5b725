// Package httpx provides the relay's HTTP handlers: the callback
// endpoint workflows deliver results to, and the result endpoint
// clients poll.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
	apperrors "github.com/wholesomegoods/callback-relay/internal/errors"
	"github.com/wholesomegoods/callback-relay/internal/service"
)

// CallbackHandlers receives asynchronous workflow results.
type CallbackHandlers struct {
	Svc    *service.ResultService
	Logger *slog.Logger
}

// callbackRequest is the inbound delivery contract. Result stays raw:
// the relay never interprets the payload.
type callbackRequest struct {
	JobID  string          `json:"job_id"`
	Result json.RawMessage `json:"result"`
}

// Callback handles POST /callback. It stores exactly one result per
// successful call; repeated deliveries for the same job_id overwrite.
func (h *CallbackHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.JobID) == "" {
		WriteError(w, http.StatusBadRequest, model.ErrJobIDMissing)
		return
	}

	if _, err := h.Svc.Store(r.Context(), req.JobID, req.Result); err != nil {
		if apperrors.IsValidation(err) {
			WriteError(w, http.StatusBadRequest, err)
			return
		}
		h.logger().ErrorContext(r.Context(), "store callback result failed",
			"job_id", req.JobID, "error", err)
		WriteError(w, http.StatusInternalServerError, errInternal)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "received",
		"job_id": req.JobID,
	})
}

func (h *CallbackHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

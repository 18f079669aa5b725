// Package service holds the business logic between the relay's HTTP
// handlers and its store backends.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wholesomegoods/callback-relay/internal/core"
	"github.com/wholesomegoods/callback-relay/internal/domain/model"
	apperrors "github.com/wholesomegoods/callback-relay/internal/errors"
)

// ResultService validates job identifiers, normalizes callback
// payloads, and delegates storage to the configured backend.
type ResultService struct {
	store  core.ResultStore
	logger *slog.Logger
}

// ResultServiceOptions groups dependencies for ResultService.
type ResultServiceOptions struct {
	Store  core.ResultStore // Required: store backend
	Logger *slog.Logger     // Optional: structured logger
}

// NewResultService creates a new ResultService.
func NewResultService(opts ResultServiceOptions) *ResultService {
	if opts.Store == nil {
		panic("result service requires a store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultService{store: opts.Store, logger: logger}
}

// Store records a callback delivery. The payload is normalized before
// storage (absent → null, non-JSON → JSON string) so reads always
// return valid JSON. Repeated deliveries for the same job overwrite.
func (s *ResultService) Store(
	ctx context.Context,
	jobID string,
	result json.RawMessage,
) (*model.JobResult, error) {
	if err := model.ValidateJobID(jobID); err != nil {
		return nil, apperrors.ValidationField("job_id", err.Error())
	}

	normalized := model.NormalizeResult(result)
	if err := s.store.Put(ctx, jobID, normalized); err != nil {
		return nil, fmt.Errorf("store result for %s: %w", jobID, err)
	}

	s.logger.DebugContext(ctx, "callback result stored",
		"job_id", jobID,
		"result_bytes", len(normalized))

	rec, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("read back result for %s: %w", jobID, err)
	}
	return rec, nil
}

// Fetch returns the stored record for jobID, or (nil, nil) when no
// result has arrived yet. It never mutates the store.
func (s *ResultService) Fetch(ctx context.Context, jobID string) (*model.JobResult, error) {
	if err := model.ValidateJobID(jobID); err != nil {
		return nil, apperrors.ValidationField("job_id", err.Error())
	}

	rec, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch result for %s: %w", jobID, err)
	}
	return rec, nil
}

// Health reports the store backend's health.
func (s *ResultService) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// Package core defines the ports between the relay's HTTP surface and
// its storage backends. The core owns the interfaces; internal/data
// provides the implementations.
package core

import (
	"context"
	"encoding/json"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
)

// ResultStore is the shared key-value association between the callback
// handler (writer) and the result handler (reader). At most one record
// exists per job identifier; Put overwrites unconditionally.
type ResultStore interface {
	// Put stores result under jobID, replacing any prior value.
	// result must already be valid JSON (see model.NormalizeResult);
	// JSON null is a storable value distinct from absence.
	Put(ctx context.Context, jobID string, result json.RawMessage) error

	// Get returns the stored record, or (nil, nil) when no record
	// exists for jobID. Absence is not an error: a never-submitted id
	// and a pending one are indistinguishable.
	Get(ctx context.Context, jobID string) (*model.JobResult, error)

	// Delete removes a record. Returns true if one existed.
	Delete(ctx context.Context, jobID string) (bool, error)

	// Health checks the backend connection.
	Health(ctx context.Context) error
}

// Sweeper is implemented by backends that need an external timer to
// reclaim expired records (Redis expires natively; memory and
// Postgres do not).
type Sweeper interface {
	// Sweep removes expired records and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
}

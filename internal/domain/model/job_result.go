// Package model holds the domain types shared by the relay's store
// backends, services, and HTTP surface.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobResult is one delivered workflow result, keyed by the job
// identifier the submitting client generated. Result is kept opaque:
// the relay never interprets the payload's internal structure.
type JobResult struct {
	JobID      string          `json:"job_id"      db:"job_id"`
	Result     json.RawMessage `json:"result"      db:"result"`
	ReceivedAt time.Time       `json:"received_at" db:"received_at"`
}

// reservedJobIDs are route words that a malformed URL could yield as a
// path segment; they are never valid identifiers.
var reservedJobIDs = map[string]bool{
	"callback": true,
	"result":   true,
	"healthz":  true,
	"readyz":   true,
}

// ErrJobIDReserved indicates the identifier collides with a route word.
var ErrJobIDReserved = errors.New("job_id collides with a reserved path segment")

// ErrJobIDMissing indicates an empty or blank identifier.
var ErrJobIDMissing = errors.New("Missing job_id")

// ValidateJobID checks that an identifier is usable as a correlation
// key. The relay imposes no format beyond non-emptiness and not
// colliding with its own routes.
func ValidateJobID(jobID string) error {
	trimmed := strings.TrimSpace(jobID)
	if trimmed == "" {
		return ErrJobIDMissing
	}
	if strings.ContainsAny(trimmed, "/ ") {
		return fmt.Errorf("job_id %q: %w", jobID, ErrJobIDReserved)
	}
	if reservedJobIDs[strings.ToLower(trimmed)] {
		return fmt.Errorf("job_id %q: %w", jobID, ErrJobIDReserved)
	}
	return nil
}

// NewJobID generates a fresh correlation key: a unix timestamp for
// rough ordering plus a random suffix for uniqueness.
func NewJobID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("job_%d_%s", time.Now().Unix(), suffix)
}

// NormalizeResult coerces an arbitrary callback payload into valid
// JSON for storage. Absent payloads become JSON null (null is a valid
// stored result, distinct from "no record"). Payloads that are not
// valid JSON are stored as a JSON string of the raw bytes rather than
// rejected; callers rely on receiving non-JSON text verbatim.
func NormalizeResult(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		// Marshalling a string cannot fail for valid UTF-8; fall back
		// to null rather than dropping the callback.
		return json.RawMessage("null")
	}
	return quoted
}

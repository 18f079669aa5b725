package data

import "errors"

// Shared sentinel errors for store backends.
var (
	ErrStoreNotConfigured = errors.New("result store not configured")
	ErrJobIDRequired      = errors.New("job_id is required")
)

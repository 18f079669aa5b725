package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
	apperrors "github.com/wholesomegoods/callback-relay/internal/errors"
)

// PostgresStore backs the result store with a job_results table so
// results survive restarts. Expiry is enforced by Sweep, driven by the
// same timer that sweeps the memory backend.
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
}

// PostgresStoreOptions configures a PostgresStore.
type PostgresStoreOptions struct {
	DB *sql.DB
	// TTL per record; 0 keeps records until explicitly deleted.
	TTL time.Duration
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(opts PostgresStoreOptions) (*PostgresStore, error) {
	if opts.DB == nil {
		return nil, ErrStoreNotConfigured
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &PostgresStore{db: opts.DB, ttl: ttl}, nil
}

// Put upserts the record: repeated callbacks for the same job_id
// overwrite, refreshing received_at.
func (s *PostgresStore) Put(ctx context.Context, jobID string, result json.RawMessage) error {
	if jobID == "" {
		return ErrJobIDRequired
	}

	const query = `
		INSERT INTO job_results (job_id, result, received_at)
		VALUES ($1, $2, now())
		ON CONFLICT (job_id)
		DO UPDATE SET
			result = EXCLUDED.result,
			received_at = now();`
	if _, err := s.db.ExecContext(ctx, query, jobID, []byte(result)); err != nil {
		return fmt.Errorf("upsert job_results: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Get returns the stored record or (nil, nil) when no row exists or
// the row has outlived the TTL (expired rows linger until Sweep but
// must not be served).
func (s *PostgresStore) Get(ctx context.Context, jobID string) (*model.JobResult, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	const query = `
		SELECT job_id, result, received_at
		FROM job_results
		WHERE job_id = $1
			AND ($2::interval IS NULL OR received_at > now() - $2::interval)`

	var record model.JobResult
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, jobID, s.ttlInterval()).
		Scan(&record.JobID, &raw, &record.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job_results: %w", apperrors.MapDBError(err))
	}
	record.Result = json.RawMessage(raw)
	return &record, nil
}

// Delete removes a record, reporting whether one existed.
func (s *PostgresStore) Delete(ctx context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, ErrJobIDRequired
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM job_results WHERE job_id = $1`, jobID)
	if err != nil {
		return false, fmt.Errorf("delete job_results: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete job_results: %w", err)
	}
	return affected > 0, nil
}

// Health pings the database connection.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Sweep removes rows older than the TTL. A no-op when expiry is
// disabled.
func (s *PostgresStore) Sweep(ctx context.Context) (int, error) {
	interval := s.ttlInterval()
	if interval == nil {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM job_results WHERE received_at <= now() - $1::interval`, *interval)
	if err != nil {
		return 0, fmt.Errorf("sweep job_results: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep job_results: %w", err)
	}
	return int(affected), nil
}

// ttlInterval renders the TTL as a Postgres interval literal, or nil
// when expiry is disabled.
func (s *PostgresStore) ttlInterval() *string {
	if s.ttl <= 0 {
		return nil
	}
	interval := fmt.Sprintf("%d seconds", int(s.ttl.Seconds()))
	return &interval
}

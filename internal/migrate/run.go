// Package migrate applies the relay's database schema. There is a
// single table; migrations are idempotent DDL applied at startup and
// in integration tests.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

const jobResultsDDL = `
CREATE TABLE IF NOT EXISTS job_results (
	job_id      TEXT PRIMARY KEY,
	result      JSONB NOT NULL DEFAULT 'null'::jsonb,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS job_results_received_at_idx
	ON job_results (received_at);
`

// Run applies the schema to the connected database.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, jobResultsDDL); err != nil {
		return fmt.Errorf("apply job_results schema: %w", err)
	}
	return nil
}

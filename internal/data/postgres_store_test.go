package data

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wholesomegoods/callback-relay/internal/testutil"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	store, err := NewPostgresStore(PostgresStoreOptions{DB: db, TTL: time.Hour})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_pg_1", json.RawMessage(`{"ok":true}`)))

		rec, err := store.Get(ctx, "job_pg_1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "job_pg_1", rec.JobID)
		assert.JSONEq(t, `{"ok":true}`, string(rec.Result))
		assert.WithinDuration(t, time.Now(), rec.ReceivedAt, time.Minute)
	})

	t.Run("null result is storable", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_pg_null", json.RawMessage(`null`)))

		rec, err := store.Get(ctx, "job_pg_null")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.JSONEq(t, `null`, string(rec.Result))
	})

	t.Run("missing row reads as absent", func(t *testing.T) {
		rec, err := store.Get(ctx, "job_pg_missing")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_pg_2", json.RawMessage(`"first"`)))
		require.NoError(t, store.Put(ctx, "job_pg_2", json.RawMessage(`"second"`)))

		rec, err := store.Get(ctx, "job_pg_2")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.JSONEq(t, `"second"`, string(rec.Result))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_pg_3", json.RawMessage(`1`)))

		ok, err := store.Delete(ctx, "job_pg_3")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Delete(ctx, "job_pg_3")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPostgresStoreSweep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	store, err := NewPostgresStore(PostgresStoreOptions{DB: db, TTL: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "job_pg_old", json.RawMessage(`1`)))
	// Age the row past the TTL.
	_, err = db.ExecContext(ctx,
		`UPDATE job_results SET received_at = now() - interval '2 minutes' WHERE job_id = $1`,
		"job_pg_old")
	require.NoError(t, err)

	rec, err := store.Get(ctx, "job_pg_old")
	require.NoError(t, err)
	assert.Nil(t, rec, "expired rows must not be served")

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestNewPostgresStoreRequiresDB(t *testing.T) {
	_, err := NewPostgresStore(PostgresStoreOptions{})
	require.ErrorIs(t, err, ErrStoreNotConfigured)
}

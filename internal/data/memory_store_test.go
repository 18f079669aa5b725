package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(MemoryStoreOptions{})
	ctx := context.Background()

	tests := []struct {
		name   string
		result string
	}{
		{name: "string", result: `"<p>hello</p>"`},
		{name: "object", result: `{"images":["https://cdn.example/a.png"]}`},
		{name: "array", result: `[1,2,3]`},
		{name: "null", result: `null`},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobID := fmt.Sprintf("job_1700000000_%08d", i)
			require.NoError(t, store.Put(ctx, jobID, json.RawMessage(tt.result)))

			rec, err := store.Get(ctx, jobID)
			require.NoError(t, err)
			require.NotNil(t, rec, "stored result must be retrievable, including null")
			assert.Equal(t, jobID, rec.JobID)
			assert.JSONEq(t, tt.result, string(rec.Result))
			assert.False(t, rec.ReceivedAt.IsZero())
		})
	}
}

func TestMemoryStoreAbsentIsNotAnError(t *testing.T) {
	store := NewMemoryStore(MemoryStoreOptions{})

	rec, err := store.Get(context.Background(), "job_never_submitted")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStoreEmptyKeyRejected(t *testing.T) {
	store := NewMemoryStore(MemoryStoreOptions{})
	ctx := context.Background()

	require.ErrorIs(t, store.Put(ctx, "", json.RawMessage(`1`)), ErrJobIDRequired)

	_, err := store.Get(ctx, "")
	require.ErrorIs(t, err, ErrJobIDRequired)
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	store := NewMemoryStore(MemoryStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "job_x", json.RawMessage(`"first"`)))
	require.NoError(t, store.Put(ctx, "job_x", json.RawMessage(`"second"`)))

	rec, err := store.Get(ctx, "job_x")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, `"second"`, string(rec.Result))
}

func TestMemoryStoreConcurrentDistinctKeys(t *testing.T) {
	store := NewMemoryStore(MemoryStoreOptions{})
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			jobID := fmt.Sprintf("job_c_%d", i)
			payload := json.RawMessage(fmt.Sprintf(`{"n":%d}`, i))
			if err := store.Put(ctx, jobID, payload); err != nil {
				t.Errorf("put %s: %v", jobID, err)
			}
		}()
	}
	wg.Wait()

	for i := range n {
		rec, err := store.Get(ctx, fmt.Sprintf("job_c_%d", i))
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, fmt.Sprintf(`{"n":%d}`, i), string(rec.Result))
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := NewMemoryStore(MemoryStoreOptions{
		TTL: time.Minute,
		Now: func() time.Time { return *clock },
	})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "job_ttl", json.RawMessage(`"v"`)))

	rec, err := store.Get(ctx, "job_ttl")
	require.NoError(t, err)
	require.NotNil(t, rec)

	now = now.Add(61 * time.Second)
	rec, err = store.Get(ctx, "job_ttl")
	require.NoError(t, err)
	assert.Nil(t, rec, "expired record must read as absent")
}

func TestMemoryStoreSweep(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := NewMemoryStore(MemoryStoreOptions{
		TTL: time.Minute,
		Now: func() time.Time { return *clock },
	})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "job_old", json.RawMessage(`1`)))
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Put(ctx, "job_new", json.RawMessage(`2`)))

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	rec, err := store.Get(ctx, "job_new")
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestMemoryStoreCapEvictsOldest(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := NewMemoryStore(MemoryStoreOptions{
		MaxEntries: 2,
		Now:        func() time.Time { return *clock },
	})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "job_a", json.RawMessage(`1`)))
	now = now.Add(time.Second)
	require.NoError(t, store.Put(ctx, "job_b", json.RawMessage(`2`)))
	now = now.Add(time.Second)
	require.NoError(t, store.Put(ctx, "job_c", json.RawMessage(`3`)))

	assert.Equal(t, 2, store.Len())

	rec, err := store.Get(ctx, "job_a")
	require.NoError(t, err)
	assert.Nil(t, rec, "oldest record should have been evicted")

	rec, err = store.Get(ctx, "job_c")
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(MemoryStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "job_d", json.RawMessage(`1`)))

	ok, err := store.Delete(ctx, "job_d")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(ctx, "job_d")
	require.NoError(t, err)
	assert.False(t, ok)
}

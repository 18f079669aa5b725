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

func TestRedisStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)

	store, err := NewRedisStore(RedisStoreOptions{Client: client, TTL: 5 * time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_redis_1", json.RawMessage(`{"ok":true}`)))

		rec, err := store.Get(ctx, "job_redis_1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "job_redis_1", rec.JobID)
		assert.JSONEq(t, `{"ok":true}`, string(rec.Result))
	})

	t.Run("null result is storable", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_redis_null", json.RawMessage(`null`)))

		rec, err := store.Get(ctx, "job_redis_null")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, `null`, string(rec.Result))
	})

	t.Run("missing key reads as absent", func(t *testing.T) {
		rec, err := store.Get(ctx, "job_redis_missing")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_redis_2", json.RawMessage(`"first"`)))
		require.NoError(t, store.Put(ctx, "job_redis_2", json.RawMessage(`"second"`)))

		rec, err := store.Get(ctx, "job_redis_2")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, `"second"`, string(rec.Result))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_redis_3", json.RawMessage(`1`)))

		ok, err := store.Delete(ctx, "job_redis_3")
		require.NoError(t, err)
		assert.True(t, ok)

		rec, err := store.Get(ctx, "job_redis_3")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("ttl is applied", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "job_redis_ttl", json.RawMessage(`1`)))

		remaining := client.TTL(ctx, redisKeyPrefix+"job_redis_ttl").Val()
		assert.True(t, remaining > 0 && remaining <= 5*time.Minute)
	})
}

func TestRedisStoreEmptyKeyRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)

	store, err := NewRedisStore(RedisStoreOptions{Client: client})
	require.NoError(t, err)

	require.ErrorIs(t, store.Put(context.Background(), "", json.RawMessage(`1`)), ErrJobIDRequired)
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	_, err := NewRedisStore(RedisStoreOptions{})
	require.ErrorIs(t, err, ErrStoreNotConfigured)
}

package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
)

// redisKeyPrefix namespaces relay records inside a shared Redis.
const redisKeyPrefix = "relay:result:"

// RedisStore backs the result store with Redis. Expiry is native: each
// record is written with the configured TTL, so no sweeper is needed.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RedisStoreOptions configures a RedisStore.
type RedisStoreOptions struct {
	Client redis.UniversalClient
	// TTL per record; 0 keeps records until explicitly deleted.
	TTL time.Duration
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(opts RedisStoreOptions) (*RedisStore, error) {
	if opts.Client == nil {
		return nil, ErrStoreNotConfigured
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: opts.Client, ttl: ttl}, nil
}

// Put stores result under jobID with the store TTL, overwriting any
// prior value and resetting its expiry.
func (s *RedisStore) Put(ctx context.Context, jobID string, result json.RawMessage) error {
	if jobID == "" {
		return ErrJobIDRequired
	}

	record := model.JobResult{JobID: jobID, Result: result, ReceivedAt: time.Now().UTC()}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+jobID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the stored record or (nil, nil) when the key is missing
// or has expired.
func (s *RedisStore) Get(ctx context.Context, jobID string) (*model.JobResult, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	payload, err := s.client.Get(ctx, redisKeyPrefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var record model.JobResult
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return &record, nil
}

// Delete removes a record, reporting whether one existed.
func (s *RedisStore) Delete(ctx context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, ErrJobIDRequired
	}

	removed, err := s.client.Del(ctx, redisKeyPrefix+jobID).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return removed > 0, nil
}

// Health pings the Redis connection.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

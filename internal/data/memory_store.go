package data

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
)

const (
	// DefaultMemoryTTL keeps a result long enough for any poller still
	// inside the 20 minute ceiling to retrieve it.
	DefaultMemoryTTL = 30 * time.Minute

	// DefaultMemoryMaxEntries bounds memory when callbacks outpace
	// expiry.
	DefaultMemoryMaxEntries = 10000
)

type memoryEntry struct {
	record    model.JobResult
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is the default, process-lifetime result store: a single
// mutex-guarded map. A restart loses all pending jobs; clients treat
// that as a timeout.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// MemoryStoreOptions configures a MemoryStore.
type MemoryStoreOptions struct {
	// TTL per record; 0 disables expiry.
	TTL time.Duration
	// MaxEntries caps tracked jobs; 0 applies the default cap.
	MaxEntries int
	// Now overrides the clock for tests.
	Now func() time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore(opts MemoryStoreOptions) *MemoryStore {
	ttl := opts.TTL
	if ttl < 0 {
		ttl = DefaultMemoryTTL
	}
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryMaxEntries
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

// Put stores result under jobID, overwriting any prior value. When the
// cap is reached and jobID is new, the oldest record is evicted first.
func (s *MemoryStore) Put(_ context.Context, jobID string, result json.RawMessage) error {
	if jobID == "" {
		return ErrJobIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[jobID]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}

	entry := memoryEntry{
		record: model.JobResult{JobID: jobID, Result: result, ReceivedAt: now},
	}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.entries[jobID] = entry
	return nil
}

// Get returns the stored record or (nil, nil) when absent or expired.
// Expired entries are dropped lazily here and in Sweep.
func (s *MemoryStore) Get(_ context.Context, jobID string) (*model.JobResult, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	s.mu.RLock()
	entry, ok := s.entries[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if s.expired(entry) {
		s.mu.Lock()
		// Re-check under the write lock; a newer Put may have replaced
		// the entry since the read lock was released.
		if current, still := s.entries[jobID]; still && s.expired(current) {
			delete(s.entries, jobID)
		}
		s.mu.Unlock()
		return nil, nil
	}

	rec := entry.record
	return &rec, nil
}

// Delete removes a record, reporting whether one existed.
func (s *MemoryStore) Delete(_ context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, ErrJobIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[jobID]
	delete(s.entries, jobID)
	return ok, nil
}

// Health always succeeds; the map has no connection to lose.
func (s *MemoryStore) Health(context.Context) error {
	return nil
}

// Sweep removes expired records and reports how many were removed.
func (s *MemoryStore) Sweep(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for jobID, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, jobID)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of tracked records, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}

// evictOldestLocked drops the record with the earliest ReceivedAt.
// Caller holds the write lock.
func (s *MemoryStore) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for jobID, entry := range s.entries {
		if oldestID == "" || entry.record.ReceivedAt.Before(oldestAt) {
			oldestID = jobID
			oldestAt = entry.record.ReceivedAt
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}

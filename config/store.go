package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreBackend selects the result store implementation.
type StoreBackend string

const (
	// StoreBackendMemory is the default process-lifetime map.
	StoreBackendMemory StoreBackend = "memory"
	// StoreBackendRedis keeps results in Redis with native expiry.
	StoreBackendRedis StoreBackend = "redis"
	// StoreBackendPostgres persists results across restarts.
	StoreBackendPostgres StoreBackend = "postgres"
)

// StoreConfig contains result store configuration.
type StoreConfig struct {
	// Backend is one of memory, redis, postgres.
	Backend string `env:"STORE_BACKEND" envDefault:"memory"`

	// TTL is how long a result is retained for its poller; 0 disables
	// expiry. The default comfortably exceeds the 20 minute polling
	// ceiling.
	TTL time.Duration `env:"STORE_TTL" envDefault:"30m"`

	// MaxEntries caps tracked jobs for the memory backend.
	MaxEntries int `env:"STORE_MAX_ENTRIES" envDefault:"10000"`

	// SweepInterval is how often expired records are reclaimed for
	// backends without native expiry.
	SweepInterval time.Duration `env:"STORE_SWEEP_INTERVAL" envDefault:"1m"`
}

const minSweepInterval = 10 * time.Second

// Sanitize applies guardrails to store configuration values.
func (s *StoreConfig) Sanitize() {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.TTL < 0 {
		s.TTL = 0
	}
	if s.MaxEntries < 0 {
		s.MaxEntries = 0
	}
	if s.SweepInterval < minSweepInterval {
		s.SweepInterval = minSweepInterval
	}
}

// ParseBackend validates the configured backend name.
func (s *StoreConfig) ParseBackend() (StoreBackend, error) {
	switch StoreBackend(s.Backend) {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
		return StoreBackend(s.Backend), nil
	default:
		return "", fmt.Errorf("unknown store backend %q (expected memory, redis, or postgres)", s.Backend)
	}
}

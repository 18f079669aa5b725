// Package config holds the relay's configuration, loaded from
// environment variables via github.com/caarlos0/env. It is split by
// concern:
//   - http.go: HTTP server configuration
//   - store.go: result store configuration
//   - database.go: Redis and Postgres connection configuration
//   - poller.go: client poller defaults
package config

import (
	"os"
	"strings"
)

// AppConfig composes the relay's configuration.
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Result store configuration
	Store StoreConfig

	// Backend connections
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Postgres DBConfig    `envPrefix:"DB_"`

	// Client poller defaults (used by the submit CLI)
	Poller PollerConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment
// variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Store.Sanitize()
	c.Poller.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling; the
// relay ships alongside a Node-built frontend).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the externally reachable base URL of the relay
	// (e.g., "https://relay.example.com"). Used to derive the default
	// callback URL handed to workflows; it must be reachable by the
	// workflow host, which is an operational constraint.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// StaticDir, when set, serves the built frontend from this
	// directory with an index.html fallback.
	StaticDir string `env:"STATIC_DIR" envDefault:""`

	// MaxBodyBytes caps request body size. Callback results carry
	// generated content but never need more than a couple of MB.
	MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" envDefault:"2097152"`

	// CORSEnabled controls the permissive CORS middleware. The browser
	// app runs on a different origin in development.
	CORSEnabled bool `env:"HTTP_CORS_ENABLED" envDefault:"true"`
}

const minBodyBytes = 1024

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.MaxBodyBytes < minBodyBytes {
		h.MaxBodyBytes = minBodyBytes
	}
}

package config

import "time"

// PollerConfig contains client poller defaults, consumed by the
// submit CLI.
type PollerConfig struct {
	// WorkflowURL is the external workflow trigger webhook.
	WorkflowURL string `env:"WORKFLOW_URL" envDefault:""`

	// Interval between polls of the result endpoint.
	Interval time.Duration `env:"POLL_INTERVAL" envDefault:"1500ms"`

	// Timeout is the overall polling ceiling. Workflows run for up to
	// roughly twenty minutes.
	Timeout time.Duration `env:"POLL_TIMEOUT" envDefault:"20m"`
}

const (
	minPollInterval = 100 * time.Millisecond
	minPollTimeout  = time.Second
)

// Sanitize applies guardrails to poller configuration values.
func (p *PollerConfig) Sanitize() {
	if p.Interval < minPollInterval {
		p.Interval = minPollInterval
	}
	if p.Timeout < minPollTimeout {
		p.Timeout = minPollTimeout
	}
}

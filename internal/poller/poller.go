// Package poller implements the client side of the relay: submit a job
// to an external workflow webhook with a generated job identifier and
// a callback URL, then poll the relay's result endpoint until the
// result appears or a timeout elapses.
package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wholesomegoods/callback-relay/internal/domain/model"
)

// State is the poller's position in the per-submission state machine.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateResolved   State = "resolved"
	StateTimedOut   State = "timed_out"
	StateFailed     State = "failed"
)

const (
	// DefaultInterval between polls; long workflow latencies make
	// anything faster pointless.
	DefaultInterval = 1500 * time.Millisecond

	// DefaultTimeout is the overall ceiling; workflows run up to
	// roughly twenty minutes.
	DefaultTimeout = 20 * time.Minute

	defaultRequestTimeout = 30 * time.Second
)

// ErrTimedOut is the terminal error when the ceiling is reached with
// no result. Surfaced to users as "timed out, please retry".
var ErrTimedOut = errors.New("timed out waiting for result")

// ErrSubmitFailed wraps workflow submission rejections; polling never
// starts after one.
var ErrSubmitFailed = errors.New("workflow submission failed")

// Config configures a poller Client.
type Config struct {
	// WorkflowURL is the external workflow trigger webhook.
	WorkflowURL string
	// RelayBaseURL is the relay's base URL, used to poll
	// {RelayBaseURL}/result/{job_id}.
	RelayBaseURL string
	// CallbackURL is where the workflow should deliver the result. It
	// must be reachable by the workflow host. Defaults to
	// {RelayBaseURL}/callback.
	CallbackURL string
	// Interval between polls. Defaults to DefaultInterval.
	Interval time.Duration
	// Timeout is the overall polling ceiling. Defaults to
	// DefaultTimeout.
	Timeout time.Duration
	// Client overrides the HTTP client (tests).
	Client *http.Client
	// Logger is optional.
	Logger *slog.Logger
	// NewJobID overrides identifier generation (tests).
	NewJobID func() string
	// OnState, when set, observes state transitions.
	OnState func(State)
}

// Client runs submissions against one workflow/relay pair. Each Run
// call is an independent state machine instance with a fresh job
// identifier; a Client may be reused across submissions.
type Client struct {
	workflowURL  string
	relayBaseURL string
	callbackURL  string
	interval     time.Duration
	timeout      time.Duration
	client       *http.Client
	logger       *slog.Logger
	newJobID     func() string
	onState      func(State)
}

// Outcome is the terminal result of one submission.
type Outcome struct {
	JobID  string
	State  State
	Result json.RawMessage
	Err    error
}

// New builds a poller Client. Callers should pass a validated config.
func New(cfg Config) (*Client, error) {
	workflowURL := strings.TrimSpace(cfg.WorkflowURL)
	if workflowURL == "" {
		return nil, errors.New("workflow url is required")
	}
	relayBaseURL := strings.TrimRight(strings.TrimSpace(cfg.RelayBaseURL), "/")
	if relayBaseURL == "" {
		return nil, errors.New("relay base url is required")
	}

	callbackURL := strings.TrimSpace(cfg.CallbackURL)
	if callbackURL == "" {
		callbackURL = relayBaseURL + "/callback"
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: defaultRequestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	newJobID := cfg.NewJobID
	if newJobID == nil {
		newJobID = model.NewJobID
	}

	return &Client{
		workflowURL:  workflowURL,
		relayBaseURL: relayBaseURL,
		callbackURL:  callbackURL,
		interval:     interval,
		timeout:      timeout,
		client:       hc,
		logger:       logger,
		newJobID:     newJobID,
		onState:      cfg.OnState,
	}, nil
}

// Run submits fields to the workflow and polls until the result
// arrives, the ceiling elapses, or ctx is canceled. Terminal states
// are reported in the Outcome; the error return is reserved for
// cancellation and request construction failures.
func (c *Client) Run(ctx context.Context, fields map[string]any) (*Outcome, error) {
	jobID := c.newJobID()
	c.transition(StateIdle)

	c.transition(StateSubmitting)
	if err := c.submit(ctx, jobID, fields); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.transition(StateFailed)
		c.logger.WarnContext(ctx, "workflow submission rejected", "job_id", jobID, "error", err)
		return &Outcome{JobID: jobID, State: StateFailed, Err: err}, nil
	}

	c.transition(StatePolling)
	return c.poll(ctx, jobID)
}

// submit posts the form fields plus job_id and callback_url to the
// workflow trigger. Any 2xx acknowledgement is accepted; the body is
// not interpreted at submission time.
func (c *Client) submit(ctx context.Context, jobID string, fields map[string]any) error {
	payload := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["job_id"] = jobID
	payload["callback_url"] = c.callbackURL

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.workflowURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrSubmitFailed, resp.StatusCode)
	}
	return nil
}

// poll queries the result endpoint at the fixed interval. Individual
// query failures are ignored; they only accumulate toward the ceiling.
func (c *Client) poll(ctx context.Context, jobID string) (*Outcome, error) {
	deadline := time.Now().Add(c.timeout)
	resultURL := fmt.Sprintf("%s/result/%s", c.relayBaseURL, url.PathEscape(jobID))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Abandoned: stop issuing queries. The relay keeps the
			// value until it expires; nothing to cancel server-side.
			return nil, ctx.Err()
		case <-timer.C:
		}

		if time.Now().After(deadline) {
			c.transition(StateTimedOut)
			return &Outcome{JobID: jobID, State: StateTimedOut, Err: ErrTimedOut}, nil
		}

		result, ready := c.query(ctx, resultURL, jobID)
		if ready {
			c.transition(StateResolved)
			return &Outcome{JobID: jobID, State: StateResolved, Result: result}, nil
		}

		timer.Reset(c.interval)
	}
}

// query issues one poll. ready is true only on a 200 with a decodable
// body; 204, transport errors, and unexpected statuses all mean "keep
// polling".
func (c *Client) query(ctx context.Context, resultURL, jobID string) (json.RawMessage, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "poll failed, will retry", "job_id", jobID, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var body struct {
		JobID  string          `json:"job_id"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.DebugContext(ctx, "poll body unreadable, will retry", "job_id", jobID, "error", err)
		return nil, false
	}
	return body.Result, true
}

func (c *Client) transition(s State) {
	if c.onState != nil {
		c.onState(s)
	}
}

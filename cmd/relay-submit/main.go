// Command relay-submit drives one workflow submission from the
// command line: it posts the form fields to the workflow webhook with
// a generated job identifier and callback URL, polls the relay until
// the result arrives, and prints it.
//
// Usage:
//
//	relay-submit -workflow https://host/webhook/... [flags] [field=value ...]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wholesomegoods/callback-relay/internal/bootstrap"
	"github.com/wholesomegoods/callback-relay/internal/poller"
)

type options struct {
	workflowURL string
	relayURL    string
	callbackURL string
	interval    time.Duration
	timeout     time.Duration
	extract     string
	dataFile    string
	fields      map[string]any
}

func main() {
	logger := bootstrap.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		logger.ErrorContext(ctx, "submission failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	opts := options{
		workflowURL: cfg.Poller.WorkflowURL,
		relayURL:    cfg.HTTP.BaseURL,
		interval:    cfg.Poller.Interval,
		timeout:     cfg.Poller.Timeout,
	}

	fs := flag.NewFlagSet("relay-submit", flag.ContinueOnError)
	fs.StringVar(&opts.workflowURL, "workflow", opts.workflowURL, "workflow trigger webhook URL")
	fs.StringVar(&opts.relayURL, "relay", opts.relayURL, "relay base URL to poll for the result")
	fs.StringVar(&opts.callbackURL, "callback", "", "callback URL handed to the workflow (default: <relay>/callback)")
	fs.DurationVar(&opts.interval, "interval", opts.interval, "poll interval")
	fs.DurationVar(&opts.timeout, "timeout", opts.timeout, "overall polling ceiling")
	fs.StringVar(&opts.extract, "extract", "", "JMESPath expression applied to the resolved result")
	fs.StringVar(&opts.dataFile, "data", "", "JSON file with form fields (merged with field=value args)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts.fields, err = collectFields(opts.dataFile, fs.Args())
	if err != nil {
		return err
	}

	if err := poller.ValidateExpression(opts.extract); err != nil {
		return err
	}

	client, err := poller.New(poller.Config{
		WorkflowURL:  opts.workflowURL,
		RelayBaseURL: opts.relayURL,
		CallbackURL:  opts.callbackURL,
		Interval:     opts.interval,
		Timeout:      opts.timeout,
		Logger:       logger,
		OnState: func(s poller.State) {
			logger.InfoContext(ctx, "state", "state", string(s))
		},
	})
	if err != nil {
		return err
	}

	outcome, err := client.Run(ctx, opts.fields)
	if err != nil {
		return err
	}

	switch outcome.State {
	case poller.StateResolved:
		return printResult(outcome.Result, opts.extract)
	case poller.StateTimedOut:
		return fmt.Errorf("job %s: timed out waiting for result, please retry", outcome.JobID)
	default:
		return fmt.Errorf("job %s: %w", outcome.JobID, outcome.Err)
	}
}

// collectFields merges the optional JSON file with field=value args;
// args win on conflicts.
func collectFields(dataFile string, args []string) (map[string]any, error) {
	fields := make(map[string]any)

	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("parse data file: %w", err)
		}
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.New("form fields must be key=value pairs")
		}
		fields[key] = value
	}

	return fields, nil
}

func printResult(result json.RawMessage, extract string) error {
	value, err := poller.Extract(result, extract)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := fmt.Fprintln(os.Stdout, string(out)); err != nil {
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	prom "github.com/prometheus/client_golang/prometheus"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/config"
	"hygieia-reporter/src/metrics"
	"hygieia-reporter/src/notify"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/store"
	"hygieia-reporter/src/telemetry"
)

// reporter holds the collaborators of one CLI run.
type reporter struct {
	cfg      config.Config
	client   *collector.Client
	mirror   broker.Broker
	ledger   *store.PostgresStore
	recorder *metrics.PrometheusRecorder
	shutdown []func(context.Context) error
}

// newReporter wires the collector client and the optional mirror, ledger,
// metrics and tracing from cfg. Close must be called when done.
func newReporter(ctx context.Context, cfg config.Config) (*reporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &reporter{cfg: cfg}

	if cfg.Tracing.Enabled {
		r.shutdown = append(r.shutdown, telemetry.InitTracer(ctx, os.Stderr, log))
	}

	r.client = newCollectorClient(cfg)

	if cfg.Metrics.Enabled {
		r.recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
	}

	if len(cfg.Mirror.Brokers) > 0 {
		brk, err := broker.NewRedpandaBroker(cfg.Mirror.Brokers, log)
		if err != nil {
			r.Close(ctx)
			return nil, fmt.Errorf("failed to create mirror broker: %w", err)
		}
		r.mirror = brk
	}

	if cfg.Ledger.DSN != "" {
		st, err := store.NewPostgresStore(ctx, cfg.Ledger.DSN)
		if err != nil {
			r.Close(ctx)
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		r.ledger = st
	}

	return r, nil
}

// newCollectorClient creates the collector client for cfg. Requests are
// unbounded unless a timeout is configured.
func newCollectorClient(cfg config.Config) *collector.Client {
	var opts []collector.Option
	if cfg.Timeout > 0 {
		opts = append(opts, collector.WithTimeout(cfg.Timeout))
	}
	return collector.NewClient(cfg.APIURL, cfg.Token, opts...)
}

// notifier builds the notifier for a job whose history comes from src.
func (r *reporter) notifier(src provider.Source) (notify.Notifier, error) {
	deps := notify.Deps{
		Collector: r.client,
		Source:    src,
		Log:       log,
	}
	if r.mirror != nil {
		deps.Mirror = r.mirror
	}
	if r.ledger != nil {
		deps.Ledger = r.ledger
	}
	if r.recorder != nil {
		deps.Metrics = r.recorder
	}
	return notify.NewNotifier(&r.cfg, deps)
}

// Close flushes metrics and traces and releases connections.
func (r *reporter) Close(ctx context.Context) {
	if r.recorder != nil && r.cfg.Metrics.Textfile != "" {
		if err := r.recorder.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
			log.Warn("Failed writing metrics to %s: %v", r.cfg.Metrics.Textfile, err)
		}
	}
	if r.mirror != nil {
		if err := r.mirror.Close(); err != nil {
			log.Warn("Failed closing mirror broker: %v", err)
		}
	}
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil {
			log.Warn("Failed closing ledger: %v", err)
		}
	}
	for _, fn := range r.shutdown {
		if err := fn(ctx); err != nil {
			log.Warn("Failed flushing traces: %v", err)
		}
	}
}

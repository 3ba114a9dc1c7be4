package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Orchestrator drives the scan loop: one sweep immediately on start, then one
// per interval. A failed sweep is logged and retried on the next tick; only
// context cancellation stops the loop.
type Orchestrator struct {
	scanner   *Scanner
	publisher *Publisher
	interval  time.Duration
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator scanning on the given interval.
func NewOrchestrator(scanner *Scanner, publisher *Publisher, interval time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		scanner:   scanner,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With(slog.String("component", "orchestrator")),
	}
}

// Run blocks until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("scan loop starting", slog.Duration("interval", o.interval))

	o.sweep(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scan loop stopped")
			return nil
		case <-ticker.C:
			o.sweep(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns its error. Used by the one-shot
// scan mode.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	result, err := o.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	return o.publisher.Publish(ctx, result)
}

func (o *Orchestrator) sweep(ctx context.Context) {
	if err := o.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		o.logger.Error("sweep failed", slog.String("error", err.Error()))
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pariscan/pariscan/internal/domain"
	"github.com/pariscan/pariscan/internal/notify"
)

// ChannelReport is the pub/sub channel new reports are announced on. The
// WebSocket hub subscribes to it.
const ChannelReport = "pariscan:report"

// Publisher fans a finished scan out to its consumers: the report cache, the
// scan history store, the pub/sub bus, cold storage, and operator
// notifications. Only the cache write is fatal; everything downstream of it
// degrades to a logged error so one flaky sink cannot stall the loop.
type Publisher struct {
	cache    domain.ReportCache
	store    domain.ScanStore        // nil when Postgres is disabled
	bus      domain.SignalBus        // nil when serving is disabled
	archiver domain.SnapshotArchiver // nil when archiving is disabled
	notifier *notify.Notifier        // nil when no senders configured
	logger   *slog.Logger
}

// NewPublisher creates a Publisher. Every sink except the cache may be nil.
func NewPublisher(
	cache domain.ReportCache,
	store domain.ScanStore,
	bus domain.SignalBus,
	archiver domain.SnapshotArchiver,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Publisher {
	return &Publisher{
		cache:    cache,
		store:    store,
		bus:      bus,
		archiver: archiver,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "publisher")),
	}
}

// Publish assigns the scan id and pushes the result to every configured sink.
func (p *Publisher) Publish(ctx context.Context, result ScanResult) error {
	report := result.Report
	report.ScanID = uuid.NewString()

	if err := p.cache.Set(ctx, report); err != nil {
		return fmt.Errorf("pipeline: cache report: %w", err)
	}

	p.persist(ctx, result, report)
	p.broadcast(ctx, report)
	p.archive(ctx, result.Snapshot)
	p.notify(ctx, report)

	p.logger.InfoContext(ctx, "report published",
		slog.String("scan_id", report.ScanID),
		slog.Int("agents", report.Totals.Agents),
	)
	return nil
}

func (p *Publisher) persist(ctx context.Context, result ScanResult, report domain.Report) {
	if p.store == nil {
		return
	}

	run := domain.ScanRun{
		ID:          report.ScanID,
		GeneratedAt: report.GeneratedAt,
		Accounts:    result.Accounts,
		Decoded:     result.Snapshot.Decoded(),
		Skipped:     result.Snapshot.Skipped,
		Agents:      report.Totals.Agents,
		Markets:     report.Totals.Markets + report.Totals.RaceMarkets,
	}
	if err := p.store.InsertRun(ctx, run); err != nil {
		p.logger.ErrorContext(ctx, "persist scan run failed", slog.String("error", err.Error()))
		return
	}
	if err := p.store.InsertAgentStats(ctx, report.ScanID, report.Leaderboard); err != nil {
		p.logger.ErrorContext(ctx, "persist agent stats failed", slog.String("error", err.Error()))
	}
}

func (p *Publisher) broadcast(ctx context.Context, report domain.Report) {
	if p.bus == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal report failed", slog.String("error", err.Error()))
		return
	}
	if err := p.bus.Publish(ctx, ChannelReport, payload); err != nil {
		p.logger.ErrorContext(ctx, "broadcast report failed", slog.String("error", err.Error()))
	}
}

func (p *Publisher) archive(ctx context.Context, snap domain.DecodedSnapshot) {
	if p.archiver == nil {
		return
	}

	path, err := p.archiver.ArchiveSnapshot(ctx, snap)
	if err != nil {
		p.logger.ErrorContext(ctx, "archive snapshot failed", slog.String("error", err.Error()))
		return
	}
	p.logger.DebugContext(ctx, "snapshot archived", slog.String("path", path))
}

func (p *Publisher) notify(ctx context.Context, report domain.Report) {
	if p.notifier == nil {
		return
	}

	title, message := notify.ScanDigest(report)
	if err := p.notifier.Notify(ctx, "scan.complete", title, message); err != nil {
		p.logger.ErrorContext(ctx, "notify failed", slog.String("error", err.Error()))
	}
}

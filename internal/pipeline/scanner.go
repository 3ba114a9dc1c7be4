// Package pipeline runs the scan loop: fetch every program account over RPC,
// decode the snapshot, build the analytics report, and publish it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pariscan/pariscan/internal/analytics"
	"github.com/pariscan/pariscan/internal/domain"
	"github.com/pariscan/pariscan/internal/program"
)

// AccountSource fetches the raw accounts owned by a program. Satisfied by the
// Solana RPC client.
type AccountSource interface {
	ProgramAccounts(ctx context.Context, programID string) ([]domain.RawAccount, error)
}

// Scanner turns one RPC sweep into a decoded snapshot and report.
type Scanner struct {
	source    AccountSource
	programID string
	shards    int
	logger    *slog.Logger
}

// NewScanner creates a Scanner. shards controls how many goroutines split the
// decode work; values below 1 are clamped to 1.
func NewScanner(source AccountSource, programID string, shards int, logger *slog.Logger) *Scanner {
	if shards < 1 {
		shards = 1
	}
	return &Scanner{
		source:    source,
		programID: programID,
		shards:    shards,
		logger:    logger.With(slog.String("component", "scanner")),
	}
}

// ScanResult bundles everything one sweep produced.
type ScanResult struct {
	Accounts int // raw accounts fetched, decoded or not
	Snapshot domain.DecodedSnapshot
	Report   domain.Report
}

// Scan fetches the full account set, decodes it, and builds the report.
func (s *Scanner) Scan(ctx context.Context) (ScanResult, error) {
	start := time.Now()

	accounts, err := s.source.ProgramAccounts(ctx, s.programID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("pipeline: fetch program accounts: %w", err)
	}

	snap, err := s.decode(ctx, accounts)
	if err != nil {
		return ScanResult{}, err
	}

	report, diag := analytics.BuildReport(snap)

	if diag.DroppedPositions > 0 || diag.DroppedRaceBets > 0 {
		s.logger.DebugContext(ctx, "dropped dangling records",
			slog.Int("positions", diag.DroppedPositions),
			slog.Int("race_bets", diag.DroppedRaceBets),
		)
	}

	s.logger.InfoContext(ctx, "scan complete",
		slog.Int("accounts", len(accounts)),
		slog.Int("decoded", snap.Decoded()),
		slog.Int("skipped", snap.Skipped),
		slog.Int("agents", report.Totals.Agents),
		slog.Duration("elapsed", time.Since(start)),
	)

	return ScanResult{
		Accounts: len(accounts),
		Snapshot: snap,
		Report:   report,
	}, nil
}

// decode shards the account list across goroutines. Decoding is pure and
// order-independent, so shard results merge in any order.
func (s *Scanner) decode(ctx context.Context, accounts []domain.RawAccount) (domain.DecodedSnapshot, error) {
	if len(accounts) == 0 {
		return domain.DecodedSnapshot{}, nil
	}

	shards := s.shards
	if shards > len(accounts) {
		shards = len(accounts)
	}
	if shards == 1 {
		return program.DecodeBatch(accounts), nil
	}

	results := make([]domain.DecodedSnapshot, shards)
	chunk := (len(accounts) + shards - 1) / shards

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > len(accounts) {
			hi = len(accounts)
		}
		i, lo, hi := i, lo, hi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = program.DecodeBatch(accounts[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.DecodedSnapshot{}, fmt.Errorf("pipeline: decode shards: %w", err)
	}

	snap := results[0]
	for _, r := range results[1:] {
		snap = program.Merge(snap, r)
	}
	return snap, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pariscan/pariscan/internal/domain"
)

// ScanStore implements domain.ScanStore using PostgreSQL.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new ScanStore backed by the given connection pool.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

const runSelectCols = `id, generated_at, accounts, decoded, skipped, agents, markets`

const statsSelectCols = `wallet, display_name, total_wagered, total_won, total_lost,
	net_pnl, open_positions, resolved, wins, losses, accuracy, streak`

// InsertRun records a completed scan.
func (s *ScanStore) InsertRun(ctx context.Context, run domain.ScanRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scan_runs (id, generated_at, accounts, decoded, skipped, agents, markets)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.GeneratedAt, run.Accounts, run.Decoded, run.Skipped,
		run.Agents, run.Markets,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert scan run: %w", err)
	}
	return nil
}

// InsertAgentStats inserts the leaderboard rows computed for one scan using
// pgx Batch. Position entry lists are snapshot-local and are not persisted.
func (s *ScanStore) InsertAgentStats(ctx context.Context, scanID string, stats []domain.AgentStats) error {
	if len(stats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO agent_stats (
			scan_id, wallet, display_name,
			total_wagered, total_won, total_lost, net_pnl,
			open_positions, resolved, wins, losses, accuracy, streak
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13
		)`

	for _, a := range stats {
		batch.Queue(query,
			scanID, a.Wallet.String(), a.DisplayName,
			a.Wagered.String(), a.Won.String(), a.Lost.String(), a.NetPnL.String(),
			a.Open, a.Resolved, a.Wins, a.Losses, a.Accuracy, a.Streak,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range stats {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert agent stats item %d: %w", i, err)
		}
	}
	return nil
}

// GetRun returns a single scan run by id.
func (s *ScanStore) GetRun(ctx context.Context, id string) (domain.ScanRun, error) {
	var run domain.ScanRun
	err := s.pool.QueryRow(ctx,
		`SELECT `+runSelectCols+` FROM scan_runs WHERE id = $1`, id,
	).Scan(
		&run.ID, &run.GeneratedAt, &run.Accounts, &run.Decoded,
		&run.Skipped, &run.Agents, &run.Markets,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScanRun{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ScanRun{}, fmt.Errorf("postgres: get scan run: %w", err)
	}
	return run, nil
}

// ListRuns returns scan runs newest first with pagination.
func (s *ScanStore) ListRuns(ctx context.Context, opts domain.ListOpts) ([]domain.ScanRun, error) {
	query := `SELECT ` + runSelectCols + ` FROM scan_runs ORDER BY generated_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scan runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScanRun
	for rows.Next() {
		var run domain.ScanRun
		if err := rows.Scan(
			&run.ID, &run.GeneratedAt, &run.Accounts, &run.Decoded,
			&run.Skipped, &run.Agents, &run.Markets,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListAgentHistory returns the stored stats rows for one wallet across scans,
// newest first.
func (s *ScanStore) ListAgentHistory(ctx context.Context, wallet domain.PublicKey, opts domain.ListOpts) ([]domain.AgentStats, error) {
	query := `SELECT ` + statsSelectCols + ` FROM agent_stats WHERE wallet = $1 ORDER BY created_at DESC`
	args := []any{wallet.String()}
	argIdx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list agent history: %w", err)
	}
	defer rows.Close()

	var out []domain.AgentStats
	for rows.Next() {
		a, err := scanAgentStatsRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan agent stats row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAgentStatsRow(rows pgx.Rows) (domain.AgentStats, error) {
	var a domain.AgentStats
	var wallet, wagered, won, lost, pnl string
	if err := rows.Scan(
		&wallet, &a.DisplayName, &wagered, &won, &lost,
		&pnl, &a.Open, &a.Resolved, &a.Wins, &a.Losses,
		&a.Accuracy, &a.Streak,
	); err != nil {
		return domain.AgentStats{}, err
	}

	pk, err := domain.PublicKeyFromBase58(wallet)
	if err != nil {
		return domain.AgentStats{}, fmt.Errorf("wallet %q: %w", wallet, err)
	}
	a.Wallet = pk

	for _, f := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{wagered, &a.Wagered}, {won, &a.Won}, {lost, &a.Lost}, {pnl, &a.NetPnL},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return domain.AgentStats{}, fmt.Errorf("amount %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return a, nil
}

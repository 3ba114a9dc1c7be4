package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// ScanRun records one completed snapshot scan for history queries.
type ScanRun struct {
	ID          string // uuid
	GeneratedAt time.Time
	Accounts    int // raw accounts fetched
	Decoded     int // records that survived decoding
	Skipped     int // unknown-kind or malformed accounts
	Agents      int
	Markets     int
}

// ScanStore persists scan runs and the per-agent leaderboard rows computed
// for each run.
type ScanStore interface {
	InsertRun(ctx context.Context, run ScanRun) error
	InsertAgentStats(ctx context.Context, scanID string, stats []AgentStats) error
	GetRun(ctx context.Context, id string) (ScanRun, error)
	ListRuns(ctx context.Context, opts ListOpts) ([]ScanRun, error)
	ListAgentHistory(ctx context.Context, wallet PublicKey, opts ListOpts) ([]AgentStats, error)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketType distinguishes binary and race markets in computed views.
type MarketType string

const (
	MarketTypeBinary MarketType = "binary"
	MarketTypeRace   MarketType = "race"
)

// PositionEntry is one agent's stake in one market, with its settlement
// result attached. For race positions each outcome bet expands into its own
// entry.
type PositionEntry struct {
	MarketID   uint64
	MarketType MarketType
	Question   string
	Label      string // side ("yes"/"no"/"both") or race outcome label
	Wagered    decimal.Decimal
	Payout     decimal.Decimal
	PnL        decimal.Decimal
	Won        *bool // nil while the market has no committed winner
	Settled    bool
}

// AgentStats is the per-participant analytics row. It is a pure projection of
// one snapshot and is rebuilt from scratch on every scan.
type AgentStats struct {
	Wallet      PublicKey
	DisplayName string
	Wagered     decimal.Decimal
	Won         decimal.Decimal
	Lost        decimal.Decimal
	NetPnL      decimal.Decimal // realized only: won minus wagered-on-settled
	Open        int
	Resolved    int
	Wins        int
	Losses      int
	Accuracy    float64 // wins / (wins + losses), 0 when nothing decided
	Streak      int     // >0 consecutive wins, <0 consecutive losses
	ActivePos   []PositionEntry
	ResolvedPos []PositionEntry
}

// ParticipantEntry is one agent's row inside a MarketView.
type ParticipantEntry struct {
	Wallet      PublicKey
	DisplayName string
	Label       string
	Wagered     decimal.Decimal
	PnL         decimal.Decimal
	Won         *bool
}

// MarketView is the per-market breakdown with participant rows sorted by
// wagered amount descending.
type MarketView struct {
	MarketID     uint64
	Question     string
	Status       MarketStatus
	Type         MarketType
	TotalPool    decimal.Decimal
	Participants []ParticipantEntry

	// Binary-market fields.
	YesPercent float64
	NoPercent  float64
	Winner     *Outcome

	// Race-market fields.
	Outcomes    []RaceOutcome
	WinnerIndex *uint8
}

// ReportTotals are snapshot-level aggregates attached to each report.
type ReportTotals struct {
	Agents       int
	Markets      int
	RaceMarkets  int
	Positions    int
	TotalWagered decimal.Decimal
}

// Report is the full analytics output for one snapshot: the leaderboard
// sorted by net realized P&L descending (ties stable in encounter order) and
// the active/resolved market views sorted by pool descending.
type Report struct {
	ScanID          string
	GeneratedAt     time.Time
	Leaderboard     []AgentStats
	ActiveMarkets   []MarketView
	ResolvedMarkets []MarketView
	Totals          ReportTotals
}

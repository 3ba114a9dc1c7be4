package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
	MarketStatusVoided   MarketStatus = "voided"
	MarketStatusDisputed MarketStatus = "disputed"
)

// Settled reports whether positions on a market of this status count toward
// realized results (as opposed to open estimates).
func (s MarketStatus) Settled() bool {
	return s == MarketStatusResolved || s == MarketStatusVoided
}

// Outcome is a binary market outcome.
type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// MarketLayer distinguishes where a market was created.
type MarketLayer string

const (
	LayerOfficial MarketLayer = "official"
	LayerLab      MarketLayer = "lab"
	LayerPrivate  MarketLayer = "private"
)

// Market is a decoded binary (yes/no) pari-mutuel market account. All amounts
// are whole-coin decimals, already rounded at the decode boundary.
type Market struct {
	ID          uint64
	Question    string
	CloseTime   time.Time
	ResolveTime time.Time
	YesPool     decimal.Decimal
	NoPool      decimal.Decimal
	YesPercent  float64
	NoPercent   float64
	Status      MarketStatus
	Winner      *Outcome // nil until a winning outcome is committed on-chain
	Layer       MarketLayer
	Creator     PublicKey
	HasBets     bool
	BettingOpen bool
}

// TotalPool returns the combined yes+no pool.
func (m Market) TotalPool() decimal.Decimal {
	return m.YesPool.Add(m.NoPool)
}

// PoolFor returns the pool on the given side.
func (m Market) PoolFor(o Outcome) decimal.Decimal {
	if o == OutcomeYes {
		return m.YesPool
	}
	return m.NoPool
}

// RaceOutcome is one slot of a multi-outcome race market. Labels are not
// guaranteed unique; the slot index is the identity.
type RaceOutcome struct {
	Label   string
	Pool    decimal.Decimal
	Percent float64
}

// RaceMarket is a decoded multi-outcome pari-mutuel market account.
type RaceMarket struct {
	ID          uint64
	Question    string
	CloseTime   time.Time
	Status      MarketStatus
	Outcomes    []RaceOutcome
	TotalPool   decimal.Decimal
	WinnerIndex *uint8 // nil until resolved
}

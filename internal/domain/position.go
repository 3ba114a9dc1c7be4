package domain

import "github.com/shopspring/decimal"

// PositionSide is the side a binary position sits on, derived from which of
// the two amounts are non-zero.
type PositionSide string

const (
	SideYes  PositionSide = "yes"
	SideNo   PositionSide = "no"
	SideBoth PositionSide = "both"
	SideNone PositionSide = "none"
)

// Position is a decoded bet on a binary market.
type Position struct {
	Owner     PublicKey
	MarketID  uint64
	YesAmount decimal.Decimal
	NoAmount  decimal.Decimal
	Claimed   bool
	Referrer  *PublicKey
}

// Side derives which side(s) of the market the position holds.
func (p Position) Side() PositionSide {
	yes := p.YesAmount.IsPositive()
	no := p.NoAmount.IsPositive()
	switch {
	case yes && no:
		return SideBoth
	case yes:
		return SideYes
	case no:
		return SideNo
	default:
		return SideNone
	}
}

// TotalWagered returns the combined stake across both sides.
func (p Position) TotalWagered() decimal.Decimal {
	return p.YesAmount.Add(p.NoAmount)
}

// AmountFor returns the stake on the given outcome.
func (p Position) AmountFor(o Outcome) decimal.Decimal {
	if o == OutcomeYes {
		return p.YesAmount
	}
	return p.NoAmount
}

// RaceBet is one wager inside a race position. Only non-zero amounts survive
// decoding.
type RaceBet struct {
	OutcomeIndex uint8
	Amount       decimal.Decimal
}

// RacePosition is a decoded bet on a race market. A single position may hold
// wagers spread across several outcome indices.
type RacePosition struct {
	Owner    PublicKey
	MarketID uint64
	Bets     []RaceBet
	Claimed  bool
}

// TotalWagered returns the combined stake across all outcome bets.
func (p RacePosition) TotalWagered() decimal.Decimal {
	total := decimal.Zero
	for _, b := range p.Bets {
		total = total.Add(b.Amount)
	}
	return total
}

// CreatorProfile is a decoded market-creator profile account. It is used only
// to map wallet identities to display names in analytics output.
type CreatorProfile struct {
	Owner          PublicKey
	DisplayName    string
	MarketsCreated uint32
}

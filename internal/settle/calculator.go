// Package settle computes pari-mutuel payouts and profit-and-loss for
// decoded positions. All losing-side stakes are pooled and redistributed to
// the winning side in proportion to each winner's stake, minus the platform
// fee on the gross payout.
//
// The calculator keys only off "is a winning outcome present", never off the
// full status enum: a market resolved as voided or disputed without a
// committed winner settles exactly like an open market (estimate only).
package settle

import (
	"github.com/shopspring/decimal"

	"github.com/pariscan/pariscan/internal/domain"
	"github.com/pariscan/pariscan/internal/program"
)

// Result is the settlement of one stake.
type Result struct {
	Wagered decimal.Decimal
	Payout  decimal.Decimal
	PnL     decimal.Decimal
	Won     *bool // nil while no winning outcome is committed (Payout is an estimate)
}

// payoutMultiplier is 1 - feeRate, applied to every gross payout.
var payoutMultiplier = decimal.NewFromInt(1).Sub(program.FeeRate)

// Binary settles a position against its binary market.
//
// With a committed winner: a position holding any stake on the winning side
// is a winner ("both"-side positions included) and is paid
// totalPool/winPool*stake, less the fee; everything else loses its full
// wager. A zero winning pool is a degenerate on-chain state and pays 0
// rather than dividing by zero.
//
// Without a committed winner the result is an estimate from current pool
// odds, marked by Won == nil.
func Binary(m domain.Market, p domain.Position) Result {
	wagered := p.TotalWagered()
	total := m.TotalPool()

	if m.Winner == nil {
		est := estimateSide(total, m.YesPool, p.YesAmount).
			Add(estimateSide(total, m.NoPool, p.NoAmount))
		return Result{
			Wagered: wagered,
			Payout:  est,
			PnL:     est.Sub(wagered),
		}
	}

	bet := p.AmountFor(*m.Winner)
	winPool := m.PoolFor(*m.Winner)

	if !bet.IsPositive() {
		lost := false
		return Result{
			Wagered: wagered,
			Payout:  decimal.Zero,
			PnL:     wagered.Neg(),
			Won:     &lost,
		}
	}

	won := true
	if !winPool.IsPositive() {
		// Degenerate: a winner with an empty pool should not occur on-chain,
		// but must not fault a full scan.
		return Result{
			Wagered: wagered,
			Payout:  decimal.Zero,
			PnL:     wagered.Neg(),
			Won:     &won,
		}
	}

	payout := total.Div(winPool).Mul(bet).Mul(payoutMultiplier)
	return Result{
		Wagered: wagered,
		Payout:  payout,
		PnL:     payout.Sub(wagered),
		Won:     &won,
	}
}

// RaceBet settles one outcome wager of a race position against its race
// market. It returns ok == false when the bet references an outcome slot the
// market does not have (a stale index after a market edit); such bets are
// dropped from aggregation.
func RaceBet(m domain.RaceMarket, bet domain.RaceBet) (Result, bool) {
	if int(bet.OutcomeIndex) >= len(m.Outcomes) {
		return Result{}, false
	}
	pool := m.Outcomes[bet.OutcomeIndex].Pool

	// An out-of-range winner index is treated as "no winner yet": the same
	// defensive fallback as a missing reference, without inventing a result.
	if m.WinnerIndex == nil || int(*m.WinnerIndex) >= len(m.Outcomes) {
		est := estimateSide(m.TotalPool, pool, bet.Amount)
		return Result{
			Wagered: bet.Amount,
			Payout:  est,
			PnL:     est.Sub(bet.Amount),
		}, true
	}

	if bet.OutcomeIndex != *m.WinnerIndex {
		lost := false
		return Result{
			Wagered: bet.Amount,
			Payout:  decimal.Zero,
			PnL:     bet.Amount.Neg(),
			Won:     &lost,
		}, true
	}

	won := true
	if !pool.IsPositive() || !bet.Amount.IsPositive() {
		return Result{
			Wagered: bet.Amount,
			Payout:  decimal.Zero,
			PnL:     bet.Amount.Neg(),
			Won:     &won,
		}, true
	}

	payout := m.TotalPool.Div(pool).Mul(bet.Amount).Mul(payoutMultiplier)
	return Result{
		Wagered: bet.Amount,
		Payout:  payout,
		PnL:     payout.Sub(bet.Amount),
		Won:     &won,
	}, true
}

// estimateSide computes the expected payout for a stake on one side of an
// unsettled pool: totalPool/sidePool*stake less the fee, or zero when the
// side's pool is empty.
func estimateSide(total, sidePool, stake decimal.Decimal) decimal.Decimal {
	if !stake.IsPositive() || !sidePool.IsPositive() {
		return decimal.Zero
	}
	return total.Div(sidePool).Mul(stake).Mul(payoutMultiplier)
}

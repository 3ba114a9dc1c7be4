package settle

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pariscan/pariscan/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func outcomePtr(o domain.Outcome) *domain.Outcome { return &o }
func idxPtr(i uint8) *uint8                       { return &i }

func resolvedYesMarket() domain.Market {
	return domain.Market{
		ID:      1,
		YesPool: dec("2.5"),
		NoPool:  dec("1.5"),
		Status:  domain.MarketStatusResolved,
		Winner:  outcomePtr(domain.OutcomeYes),
	}
}

func TestBinaryWinningSide(t *testing.T) {
	// total pool 4.0, win pool 2.5, stake 0.5:
	// gross = (4.0/2.5)*0.5 = 0.8, net = 0.8*0.97 = 0.776
	res := Binary(resolvedYesMarket(), domain.Position{
		MarketID:  1,
		YesAmount: dec("0.5"),
	})

	require.NotNil(t, res.Won)
	assert.True(t, *res.Won)
	assert.True(t, res.Wagered.Equal(dec("0.5")), "wagered = %s", res.Wagered)
	assert.True(t, res.Payout.Equal(dec("0.776")), "payout = %s", res.Payout)
	assert.True(t, res.PnL.Equal(dec("0.276")), "pnl = %s", res.PnL)
}

func TestBinaryLosingSide(t *testing.T) {
	res := Binary(resolvedYesMarket(), domain.Position{
		MarketID: 1,
		NoAmount: dec("1"),
	})

	require.NotNil(t, res.Won)
	assert.False(t, *res.Won)
	assert.True(t, res.Payout.IsZero())
	assert.True(t, res.PnL.Equal(dec("-1")), "pnl = %s", res.PnL)
}

func TestBinaryBothSidesWinnerCredited(t *testing.T) {
	// A position on both sides is credited for its stake on the winner and
	// charged its full wager.
	res := Binary(resolvedYesMarket(), domain.Position{
		MarketID:  1,
		YesAmount: dec("0.5"),
		NoAmount:  dec("0.5"),
	})

	require.NotNil(t, res.Won)
	assert.True(t, *res.Won)
	assert.True(t, res.Payout.Equal(dec("0.776")))
	assert.True(t, res.PnL.Equal(dec("-0.224")), "pnl = %s", res.PnL)
}

func TestBinaryZeroWinningPoolPaysNothing(t *testing.T) {
	m := domain.Market{
		ID:      1,
		YesPool: dec("0"),
		NoPool:  dec("1.2"),
		Status:  domain.MarketStatusResolved,
		Winner:  outcomePtr(domain.OutcomeYes),
	}
	res := Binary(m, domain.Position{MarketID: 1, YesAmount: dec("0.3")})

	require.NotNil(t, res.Won)
	assert.True(t, *res.Won)
	assert.True(t, res.Payout.IsZero())
	assert.True(t, res.PnL.Equal(dec("-0.3")), "pnl = %s", res.PnL)
}

func TestBinaryOpenMarketEstimates(t *testing.T) {
	m := domain.Market{
		ID:      1,
		YesPool: dec("2.5"),
		NoPool:  dec("1.5"),
		Status:  domain.MarketStatusActive,
	}
	res := Binary(m, domain.Position{MarketID: 1, YesAmount: dec("0.5")})

	assert.Nil(t, res.Won, "open market settles to an estimate")
	assert.True(t, res.Payout.Equal(dec("0.776")))
	assert.True(t, res.PnL.Equal(dec("0.276")))
}

func TestBinaryVoidedWithoutWinnerEstimates(t *testing.T) {
	m := domain.Market{
		ID:      1,
		YesPool: dec("2.5"),
		NoPool:  dec("1.5"),
		Status:  domain.MarketStatusVoided,
	}
	res := Binary(m, domain.Position{MarketID: 1, NoAmount: dec("1.5")})

	assert.Nil(t, res.Won, "voided without a winner behaves like open")
}

func TestBinaryZeroStake(t *testing.T) {
	res := Binary(resolvedYesMarket(), domain.Position{MarketID: 1})

	require.NotNil(t, res.Won)
	assert.False(t, *res.Won)
	assert.True(t, res.Wagered.IsZero())
	assert.True(t, res.Payout.IsZero())
	assert.True(t, res.PnL.IsZero())
}

func TestBinaryOpenEmptySidePool(t *testing.T) {
	m := domain.Market{
		ID:      1,
		YesPool: dec("0"),
		NoPool:  dec("1"),
		Status:  domain.MarketStatusActive,
	}
	res := Binary(m, domain.Position{MarketID: 1, YesAmount: dec("0.2")})

	assert.Nil(t, res.Won)
	assert.True(t, res.Payout.IsZero())
	assert.True(t, res.PnL.Equal(dec("-0.2")))
}

func raceMarketFixture() domain.RaceMarket {
	return domain.RaceMarket{
		ID:     7,
		Status: domain.MarketStatusResolved,
		Outcomes: []domain.RaceOutcome{
			{Label: "alpha", Pool: dec("1")},
			{Label: "beta", Pool: dec("2")},
			{Label: "gamma", Pool: dec("1")},
		},
		TotalPool:   dec("4"),
		WinnerIndex: idxPtr(1),
	}
}

func TestRaceBetWinner(t *testing.T) {
	res, ok := RaceBet(raceMarketFixture(), domain.RaceBet{OutcomeIndex: 1, Amount: dec("0.5")})
	require.True(t, ok)
	require.NotNil(t, res.Won)
	assert.True(t, *res.Won)
	// gross = (4/2)*0.5 = 1, net = 0.97
	assert.True(t, res.Payout.Equal(dec("0.97")), "payout = %s", res.Payout)
	assert.True(t, res.PnL.Equal(dec("0.47")), "pnl = %s", res.PnL)
}

func TestRaceBetLoser(t *testing.T) {
	res, ok := RaceBet(raceMarketFixture(), domain.RaceBet{OutcomeIndex: 0, Amount: dec("1")})
	require.True(t, ok)
	require.NotNil(t, res.Won)
	assert.False(t, *res.Won)
	assert.True(t, res.PnL.Equal(dec("-1")))
}

func TestRaceBetStaleIndexDropped(t *testing.T) {
	_, ok := RaceBet(raceMarketFixture(), domain.RaceBet{OutcomeIndex: 5, Amount: dec("1")})
	assert.False(t, ok)
}

func TestRaceBetOpenEstimates(t *testing.T) {
	m := raceMarketFixture()
	m.Status = domain.MarketStatusActive
	m.WinnerIndex = nil

	res, ok := RaceBet(m, domain.RaceBet{OutcomeIndex: 1, Amount: dec("0.5")})
	require.True(t, ok)
	assert.Nil(t, res.Won)
	assert.True(t, res.Payout.Equal(dec("0.97")))
}

func TestRaceBetOutOfRangeWinnerTreatedAsUnresolved(t *testing.T) {
	m := raceMarketFixture()
	m.WinnerIndex = idxPtr(9)

	res, ok := RaceBet(m, domain.RaceBet{OutcomeIndex: 1, Amount: dec("0.5")})
	require.True(t, ok)
	assert.Nil(t, res.Won)
}

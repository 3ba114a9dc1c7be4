package program

import (
	"encoding/binary"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pariscan/pariscan/internal/domain"
)

// fixture builds account payloads field by field, mirroring the on-chain
// layout.
type fixture struct {
	b []byte
}

func newFixture(k Kind) *fixture {
	tag := Discriminator(k)
	return &fixture{b: tag[:]}
}

func (f *fixture) u8(v uint8) *fixture {
	f.b = append(f.b, v)
	return f
}

func (f *fixture) u32(v uint32) *fixture {
	f.b = binary.LittleEndian.AppendUint32(f.b, v)
	return f
}

func (f *fixture) u64(v uint64) *fixture {
	f.b = binary.LittleEndian.AppendUint64(f.b, v)
	return f
}

func (f *fixture) i64(v int64) *fixture {
	return f.u64(uint64(v))
}

func (f *fixture) str(s string) *fixture {
	f.u32(uint32(len(s)))
	f.b = append(f.b, s...)
	return f
}

func (f *fixture) fixedStr(s string, width int) *fixture {
	padded := make([]byte, width)
	copy(padded, s)
	f.b = append(f.b, padded...)
	return f
}

func (f *fixture) pubkey(pk domain.PublicKey) *fixture {
	f.b = append(f.b, pk[:]...)
	return f
}

func (f *fixture) none() *fixture {
	return f.u8(0)
}

func (f *fixture) someU8(v uint8) *fixture {
	return f.u8(1).u8(v)
}

func (f *fixture) bytes() []byte {
	return f.b
}

func testKey(fill byte) domain.PublicKey {
	var pk domain.PublicKey
	for i := range pk {
		pk[i] = fill
	}
	return pk
}

// coinsOf is lamports for a whole-coin float, for readable fixtures.
func coinsOf(c float64) uint64 {
	return uint64(c * LamportsPerCoin)
}

func validMarketBytes() []byte {
	return newFixture(KindMarket).
		u64(42).
		str("Will it rain tomorrow?").
		i64(1_700_000_000).
		i64(1_700_086_400).
		u64(coinsOf(2.5)). // yes pool
		u64(coinsOf(1.5)). // no pool
		u8(2).             // resolved
		someU8(1).         // winner: yes
		u8(0).             // official
		pubkey(testKey(7)).
		u8(1). // has bets
		u8(0). // betting closed
		bytes()
}

func TestDecodeMarket(t *testing.T) {
	m, err := DecodeMarket(validMarketBytes())
	require.NoError(t, err)

	assert.Equal(t, uint64(42), m.ID)
	assert.Equal(t, "Will it rain tomorrow?", m.Question)
	assert.Equal(t, int64(1_700_000_000), m.CloseTime.Unix())
	assert.Equal(t, int64(1_700_086_400), m.ResolveTime.Unix())
	assert.True(t, m.YesPool.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, m.NoPool.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, domain.MarketStatusResolved, m.Status)
	require.NotNil(t, m.Winner)
	assert.Equal(t, domain.OutcomeYes, *m.Winner)
	assert.Equal(t, domain.LayerOfficial, m.Layer)
	assert.Equal(t, testKey(7), m.Creator)
	assert.True(t, m.HasBets)
	assert.False(t, m.BettingOpen)

	assert.InDelta(t, 62.5, m.YesPercent, 0.001)
	assert.InDelta(t, 37.5, m.NoPercent, 0.001)
}

func TestDecodeMarketPercentInvariant(t *testing.T) {
	tests := []struct {
		name    string
		yes, no uint64
	}{
		{"even pools", coinsOf(1), coinsOf(1)},
		{"skewed pools", coinsOf(9.1234), coinsOf(0.0001)},
		{"one side empty", coinsOf(3.3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := newFixture(KindMarket).
				u64(1).str("q").i64(0).i64(0).
				u64(tt.yes).u64(tt.no).
				u8(0).none().u8(0).pubkey(testKey(1)).u8(0).u8(1).
				bytes()
			m, err := DecodeMarket(data)
			require.NoError(t, err)
			assert.InDelta(t, 100, m.YesPercent+m.NoPercent, 0.1)
		})
	}
}

func TestDecodeMarketZeroPoolDefaults(t *testing.T) {
	data := newFixture(KindMarket).
		u64(1).str("q").i64(0).i64(0).
		u64(0).u64(0).
		u8(0).none().u8(0).pubkey(testKey(1)).u8(0).u8(1).
		bytes()
	m, err := DecodeMarket(data)
	require.NoError(t, err)
	assert.Equal(t, 50.0, m.YesPercent)
	assert.Equal(t, 50.0, m.NoPercent)
}

func TestDecodeMarketFailsClosedOnTruncation(t *testing.T) {
	valid := validMarketBytes()
	for n := 0; n < len(valid); n++ {
		_, err := DecodeMarket(valid[:n])
		require.Error(t, err, "prefix of %d bytes must not decode", n)
		require.ErrorIs(t, err, ErrInvalidRecord)
	}
}

func TestDecodeMarketRejectsHugeLength(t *testing.T) {
	data := newFixture(KindMarket).
		u64(1).
		u32(0xFFFFFFFF). // question length; would allocate 4 GiB if unchecked
		bytes()
	_, err := DecodeMarket(data)
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDecodeMarketRejectsUnknownStatus(t *testing.T) {
	data := newFixture(KindMarket).
		u64(1).str("q").i64(0).i64(0).
		u64(0).u64(0).
		u8(9). // no such status
		none().u8(0).pubkey(testKey(1)).u8(0).u8(1).
		bytes()
	_, err := DecodeMarket(data)
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDecodeMarketDeterministic(t *testing.T) {
	data := validMarketBytes()
	a, err := DecodeMarket(data)
	require.NoError(t, err)
	b, err := DecodeMarket(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func validPositionBytes() []byte {
	return newFixture(KindPosition).
		pubkey(testKey(3)).
		u64(42).
		u64(coinsOf(0.5)).
		u64(0).
		u8(0).
		none().
		bytes()
}

func TestDecodePosition(t *testing.T) {
	p, err := DecodePosition(validPositionBytes())
	require.NoError(t, err)

	assert.Equal(t, testKey(3), p.Owner)
	assert.Equal(t, uint64(42), p.MarketID)
	assert.True(t, p.YesAmount.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, p.NoAmount.IsZero())
	assert.False(t, p.Claimed)
	assert.Nil(t, p.Referrer)
	assert.Equal(t, domain.SideYes, p.Side())
}

func TestDecodePositionWithReferrer(t *testing.T) {
	ref := testKey(9)
	data := newFixture(KindPosition).
		pubkey(testKey(3)).
		u64(42).
		u64(coinsOf(0.25)).
		u64(coinsOf(0.75)).
		u8(1).
		u8(1).pubkey(ref).
		bytes()

	p, err := DecodePosition(data)
	require.NoError(t, err)
	require.NotNil(t, p.Referrer)
	assert.Equal(t, ref, *p.Referrer)
	assert.True(t, p.Claimed)
	assert.Equal(t, domain.SideBoth, p.Side())
	assert.True(t, p.TotalWagered().Equal(decimal.RequireFromString("1")))
}

func TestDecodePositionFailsClosedOnTruncation(t *testing.T) {
	valid := validPositionBytes()
	for n := 0; n < len(valid); n++ {
		_, err := DecodePosition(valid[:n])
		require.ErrorIs(t, err, ErrInvalidRecord, "prefix of %d bytes", n)
	}
}

func validRaceMarketBytes() []byte {
	f := newFixture(KindRaceMarket).
		u64(77).
		str("First to ship?").
		i64(1_700_000_000).
		u8(2). // resolved
		u8(3)  // three populated outcome slots
	f.fixedStr("alpha", raceLabelLen).u64(coinsOf(1))
	f.fixedStr("beta", raceLabelLen).u64(coinsOf(2))
	f.fixedStr("gamma", raceLabelLen).u64(coinsOf(1))
	for i := 3; i < raceMaxOutcomes; i++ {
		f.fixedStr("", raceLabelLen).u64(0)
	}
	f.u64(coinsOf(4)) // total pool
	f.someU8(1)       // winner: beta
	return f.bytes()
}

func TestDecodeRaceMarket(t *testing.T) {
	m, err := DecodeRaceMarket(validRaceMarketBytes())
	require.NoError(t, err)

	assert.Equal(t, uint64(77), m.ID)
	assert.Equal(t, domain.MarketStatusResolved, m.Status)
	require.Len(t, m.Outcomes, 3)
	assert.Equal(t, "alpha", m.Outcomes[0].Label)
	assert.Equal(t, "beta", m.Outcomes[1].Label)
	assert.Equal(t, "gamma", m.Outcomes[2].Label)
	assert.True(t, m.Outcomes[1].Pool.Equal(decimal.RequireFromString("2")))
	assert.True(t, m.TotalPool.Equal(decimal.RequireFromString("4")))
	require.NotNil(t, m.WinnerIndex)
	assert.Equal(t, uint8(1), *m.WinnerIndex)

	assert.InDelta(t, 25, m.Outcomes[0].Percent, 0.001)
	assert.InDelta(t, 50, m.Outcomes[1].Percent, 0.001)
	assert.InDelta(t, 25, m.Outcomes[2].Percent, 0.001)
}

func TestDecodeRaceMarketUniformPercentOnZeroPool(t *testing.T) {
	f := newFixture(KindRaceMarket).
		u64(1).str("q").i64(0).u8(0).u8(4)
	for i := 0; i < raceMaxOutcomes; i++ {
		f.fixedStr("x", raceLabelLen).u64(0)
	}
	f.u64(0).none()

	m, err := DecodeRaceMarket(f.bytes())
	require.NoError(t, err)
	require.Len(t, m.Outcomes, 4)
	for _, o := range m.Outcomes {
		assert.Equal(t, 25.0, o.Percent)
	}
}

func TestDecodeRaceMarketRejectsOversizedCount(t *testing.T) {
	data := newFixture(KindRaceMarket).
		u64(1).str("q").i64(0).u8(0).
		u8(raceMaxOutcomes + 1).
		bytes()
	_, err := DecodeRaceMarket(data)
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDecodeRaceMarketFailsClosedOnTruncation(t *testing.T) {
	valid := validRaceMarketBytes()
	for n := 0; n < len(valid); n++ {
		_, err := DecodeRaceMarket(valid[:n])
		require.ErrorIs(t, err, ErrInvalidRecord, "prefix of %d bytes", n)
	}
}

func validRacePositionBytes() []byte {
	f := newFixture(KindRacePosition).
		pubkey(testKey(5)).
		u64(77).
		u8(3)
	f.u8(0).u64(coinsOf(0.5))
	f.u8(2).u64(0) // zero amount: dropped on decode
	f.u8(1).u64(coinsOf(0.25))
	for i := 3; i < raceMaxOutcomes; i++ {
		f.u8(0).u64(0)
	}
	f.u8(0)
	return f.bytes()
}

func TestDecodeRacePosition(t *testing.T) {
	p, err := DecodeRacePosition(validRacePositionBytes())
	require.NoError(t, err)

	assert.Equal(t, testKey(5), p.Owner)
	assert.Equal(t, uint64(77), p.MarketID)
	require.Len(t, p.Bets, 2, "zero-amount bets are not retained")
	assert.Equal(t, uint8(0), p.Bets[0].OutcomeIndex)
	assert.Equal(t, uint8(1), p.Bets[1].OutcomeIndex)
	assert.True(t, p.TotalWagered().Equal(decimal.RequireFromString("0.75")))
}

func TestDecodeRacePositionFailsClosedOnTruncation(t *testing.T) {
	valid := validRacePositionBytes()
	for n := 0; n < len(valid); n++ {
		_, err := DecodeRacePosition(valid[:n])
		require.ErrorIs(t, err, ErrInvalidRecord, "prefix of %d bytes", n)
	}
}

func TestDecodeProfile(t *testing.T) {
	data := newFixture(KindProfile).
		pubkey(testKey(8)).
		str("oracle_joe").
		u32(12).
		bytes()

	p, err := DecodeProfile(data)
	require.NoError(t, err)
	assert.Equal(t, testKey(8), p.Owner)
	assert.Equal(t, "oracle_joe", p.DisplayName)
	assert.Equal(t, uint32(12), p.MarketsCreated)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"market", validMarketBytes(), KindMarket},
		{"position", validPositionBytes(), KindPosition},
		{"race market", validRaceMarketBytes(), KindRaceMarket},
		{"race position", validRacePositionBytes(), KindRacePosition},
		{"foreign tag", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 9}, KindUnknown},
		{"short buffer", []byte{1, 2, 3}, KindUnknown},
		{"empty buffer", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.data))
		})
	}
}

func TestDecodeBatchSkipsBadRecordsAndKeepsGoodOnes(t *testing.T) {
	accounts := []domain.RawAccount{
		{Pubkey: testKey(1), Data: validMarketBytes()},
		{Pubkey: testKey(2), Data: []byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 1}}, // foreign kind
		{Pubkey: testKey(3), Data: validPositionBytes()},
		{Pubkey: testKey(4), Data: validMarketBytes()[:20]}, // truncated market
		{Pubkey: testKey(5), Data: validRaceMarketBytes()},
		{Pubkey: testKey(6), Data: validRacePositionBytes()},
		{Pubkey: testKey(7), Data: nil},
	}

	snap := DecodeBatch(accounts)

	assert.Len(t, snap.Markets, 1)
	assert.Len(t, snap.Positions, 1)
	assert.Len(t, snap.RaceMarkets, 1)
	assert.Len(t, snap.RacePositions, 1)
	assert.Equal(t, 3, snap.Skipped)
	assert.Equal(t, 4, snap.Decoded())
}

func TestMergeCombinesShards(t *testing.T) {
	a := DecodeBatch([]domain.RawAccount{{Data: validMarketBytes()}})
	b := DecodeBatch([]domain.RawAccount{
		{Data: validPositionBytes()},
		{Data: []byte{1}},
	})

	merged := Merge(a, b)
	assert.Len(t, merged.Markets, 1)
	assert.Len(t, merged.Positions, 1)
	assert.Equal(t, 1, merged.Skipped)
}

func TestCoinsRounding(t *testing.T) {
	tests := []struct {
		raw  uint64
		want string
	}{
		{1_000_000_000, "1"},
		{500_000_000, "0.5"},
		{123_456_789, "0.1235"}, // round half-up at 4 places
		{123_449_999, "0.1234"},
		{0, "0"},
	}
	for _, tt := range tests {
		got := coins(tt.raw)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"coins(%d) = %s, want %s", tt.raw, got, tt.want)
	}
}

package program

import (
	"time"

	"github.com/pariscan/pariscan/internal/domain"
)

const (
	// raceMaxOutcomes is the fixed capacity of a race market's outcome array.
	// The on-chain account always reserves this many slots; a count field
	// says how many are populated.
	raceMaxOutcomes = 10

	// raceLabelLen is the fixed byte width of an outcome label, NUL-padded.
	raceLabelLen = 32
)

// RaceMarket account layout, after the discriminator:
//
//	id            u64
//	question      str (4-byte len, <=500 bytes)
//	close_ts      i64 unix seconds
//	status        u8
//	outcome_count u8
//	outcomes      10 x { label [32]byte NUL-padded, pool u64 }
//	total_pool    u64 lamports
//	winner        option<u8>

// DecodeRaceMarket decodes a multi-outcome race market account payload.
// Slots beyond outcome_count are consumed from the cursor (they occupy
// buffer space) but discarded.
func DecodeRaceMarket(data []byte) (domain.RaceMarket, error) {
	r := newReader(data)
	r.skip(DiscriminatorLen)

	id := r.u64()
	question := r.str(maxQuestionLen)
	closeTs := r.i64()
	statusByte := r.u8()
	count := r.u8()
	if r.err != nil {
		return domain.RaceMarket{}, r.err
	}
	if int(count) > raceMaxOutcomes {
		return domain.RaceMarket{}, errLengthBound
	}

	labels := make([]string, 0, count)
	pools := make([]uint64, 0, count)
	for i := 0; i < raceMaxOutcomes; i++ {
		if i < int(count) {
			labels = append(labels, r.fixedStr(raceLabelLen))
			pools = append(pools, r.u64())
		} else {
			r.skip(raceLabelLen + 8)
		}
	}
	totalPool := r.u64()
	winner := r.optionU8()

	if r.err != nil {
		return domain.RaceMarket{}, r.err
	}
	status, ok := statusFromByte(statusByte)
	if !ok {
		return domain.RaceMarket{}, errBadEnum
	}

	m := domain.RaceMarket{
		ID:          id,
		Question:    question,
		CloseTime:   time.Unix(closeTs, 0).UTC(),
		Status:      status,
		TotalPool:   coins(totalPool),
		WinnerIndex: winner,
	}
	// Percentages only once all raw fields are in; a zero total pool spreads
	// uniformly across the populated outcomes.
	uniform := 0.0
	if count > 0 {
		uniform = roundPercent(100 / float64(count))
	}
	m.Outcomes = make([]domain.RaceOutcome, 0, count)
	for i := range labels {
		pool := coins(pools[i])
		m.Outcomes = append(m.Outcomes, domain.RaceOutcome{
			Label:   labels[i],
			Pool:    pool,
			Percent: percent(pool, m.TotalPool, uniform),
		})
	}
	return m, nil
}

// RacePosition account layout, after the discriminator:
//
//	owner     [32]byte
//	market_id u64
//	bet_count u8
//	bets      10 x { outcome_index u8, amount u64 }
//	claimed   u8

// DecodeRacePosition decodes a race position account payload. Only bets with
// a non-zero amount are retained.
func DecodeRacePosition(data []byte) (domain.RacePosition, error) {
	r := newReader(data)
	r.skip(DiscriminatorLen)

	owner := r.pubkey()
	marketID := r.u64()
	count := r.u8()
	if r.err != nil {
		return domain.RacePosition{}, r.err
	}
	if int(count) > raceMaxOutcomes {
		return domain.RacePosition{}, errLengthBound
	}

	type rawBet struct {
		index  uint8
		amount uint64
	}
	raw := make([]rawBet, 0, count)
	for i := 0; i < raceMaxOutcomes; i++ {
		if i < int(count) {
			idx := r.u8()
			amt := r.u64()
			raw = append(raw, rawBet{index: idx, amount: amt})
		} else {
			r.skip(1 + 8)
		}
	}
	claimed := r.boolByte()

	if r.err != nil {
		return domain.RacePosition{}, r.err
	}

	pos := domain.RacePosition{
		Owner:    owner,
		MarketID: marketID,
		Claimed:  claimed,
	}
	for _, b := range raw {
		if b.amount == 0 {
			continue
		}
		pos.Bets = append(pos.Bets, domain.RaceBet{
			OutcomeIndex: b.index,
			Amount:       coins(b.amount),
		})
	}
	return pos, nil
}

package program

import (
	"time"

	"github.com/pariscan/pariscan/internal/domain"
)

// maxQuestionLen caps the length prefix of market question text.
const maxQuestionLen = 500

// Market account layout, after the discriminator:
//
//	id           u64
//	question     str (4-byte len, <=500 bytes)
//	close_ts     i64 unix seconds
//	resolve_ts   i64 unix seconds
//	yes_pool     u64 lamports
//	no_pool      u64 lamports
//	status       u8
//	winner       option<u8>
//	layer        u8
//	creator      [32]byte
//	has_bets     u8
//	betting_open u8

// DecodeMarket decodes a binary market account payload (including its
// discriminator prefix). It returns an error wrapping ErrInvalidRecord when
// the payload is truncated or carries out-of-range fields.
func DecodeMarket(data []byte) (domain.Market, error) {
	r := newReader(data)
	r.skip(DiscriminatorLen)

	id := r.u64()
	question := r.str(maxQuestionLen)
	closeTs := r.i64()
	resolveTs := r.i64()
	yesPool := r.u64()
	noPool := r.u64()
	statusByte := r.u8()
	winnerByte := r.optionU8()
	layerByte := r.u8()
	creator := r.pubkey()
	hasBets := r.boolByte()
	bettingOpen := r.boolByte()

	if r.err != nil {
		return domain.Market{}, r.err
	}

	status, ok := statusFromByte(statusByte)
	if !ok {
		return domain.Market{}, errBadEnum
	}
	layer, ok := layerFromByte(layerByte)
	if !ok {
		return domain.Market{}, errBadEnum
	}
	var winner *domain.Outcome
	if winnerByte != nil {
		o, ok := outcomeFromByte(*winnerByte)
		if !ok {
			return domain.Market{}, errBadEnum
		}
		winner = &o
	}

	m := domain.Market{
		ID:          id,
		Question:    question,
		CloseTime:   time.Unix(closeTs, 0).UTC(),
		ResolveTime: time.Unix(resolveTs, 0).UTC(),
		YesPool:     coins(yesPool),
		NoPool:      coins(noPool),
		Status:      status,
		Winner:      winner,
		Layer:       layer,
		Creator:     creator,
		HasBets:     hasBets,
		BettingOpen: bettingOpen,
	}
	// Derived fields only once all raw reads succeeded. A zero pool defaults
	// both sides to 50.
	total := m.TotalPool()
	m.YesPercent = percent(m.YesPool, total, 50)
	m.NoPercent = percent(m.NoPool, total, 50)
	return m, nil
}

func statusFromByte(b uint8) (domain.MarketStatus, bool) {
	switch b {
	case 0:
		return domain.MarketStatusActive, true
	case 1:
		return domain.MarketStatusClosed, true
	case 2:
		return domain.MarketStatusResolved, true
	case 3:
		return domain.MarketStatusVoided, true
	case 4:
		return domain.MarketStatusDisputed, true
	default:
		return "", false
	}
}

func outcomeFromByte(b uint8) (domain.Outcome, bool) {
	switch b {
	case 0:
		return domain.OutcomeNo, true
	case 1:
		return domain.OutcomeYes, true
	default:
		return "", false
	}
}

func layerFromByte(b uint8) (domain.MarketLayer, bool) {
	switch b {
	case 0:
		return domain.LayerOfficial, true
	case 1:
		return domain.LayerLab, true
	case 2:
		return domain.LayerPrivate, true
	default:
		return "", false
	}
}

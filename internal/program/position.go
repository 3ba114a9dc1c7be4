package program

import "github.com/pariscan/pariscan/internal/domain"

// Position account layout, after the discriminator:
//
//	owner      [32]byte
//	market_id  u64
//	yes_amount u64 lamports
//	no_amount  u64 lamports
//	claimed    u8
//	referrer   option<[32]byte>

// DecodePosition decodes a binary-market position account payload.
func DecodePosition(data []byte) (domain.Position, error) {
	r := newReader(data)
	r.skip(DiscriminatorLen)

	owner := r.pubkey()
	marketID := r.u64()
	yesAmount := r.u64()
	noAmount := r.u64()
	claimed := r.boolByte()
	referrer := r.optionPubkey()

	if r.err != nil {
		return domain.Position{}, r.err
	}

	return domain.Position{
		Owner:     owner,
		MarketID:  marketID,
		YesAmount: coins(yesAmount),
		NoAmount:  coins(noAmount),
		Claimed:   claimed,
		Referrer:  referrer,
	}, nil
}

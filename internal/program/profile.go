package program

import "github.com/pariscan/pariscan/internal/domain"

// maxDisplayNameLen caps the length prefix of profile display names.
const maxDisplayNameLen = 64

// Profile account layout, after the discriminator:
//
//	owner           [32]byte
//	display_name    str (4-byte len, <=64 bytes)
//	markets_created u32

// DecodeProfile decodes a creator profile account payload.
func DecodeProfile(data []byte) (domain.CreatorProfile, error) {
	r := newReader(data)
	r.skip(DiscriminatorLen)

	owner := r.pubkey()
	name := r.str(maxDisplayNameLen)
	created := r.u32()

	if r.err != nil {
		return domain.CreatorProfile{}, r.err
	}

	return domain.CreatorProfile{
		Owner:          owner,
		DisplayName:    name,
		MarketsCreated: created,
	}, nil
}

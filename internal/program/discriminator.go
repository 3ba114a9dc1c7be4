// Package program decodes raw account payloads of the on-chain pari-mutuel
// betting program into typed domain records. Each account carries an 8-byte
// discriminator prefix identifying its record schema; everything after it is
// a fixed layout of little-endian integers, length-prefixed strings,
// fixed-capacity arrays, and optional fields guarded by 1-byte presence
// flags.
//
// Decoding is defensive throughout: unknown discriminators and malformed
// payloads are skipped, never faulted, because a full-ledger scan must
// survive foreign and corrupt accounts.
package program

// DiscriminatorLen is the length of the account-type tag prefixing every
// account payload of the program.
const DiscriminatorLen = 8

// Kind identifies which record schema applies to an account payload.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMarket
	KindPosition
	KindRaceMarket
	KindRacePosition
	KindProfile
)

// String returns the schema name for logging.
func (k Kind) String() string {
	switch k {
	case KindMarket:
		return "market"
	case KindPosition:
		return "position"
	case KindRaceMarket:
		return "race_market"
	case KindRacePosition:
		return "race_position"
	case KindProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Account discriminators of the deployed program version. These must match
// the on-chain layout exactly; a mismatch makes every decode skip silently.
var (
	discMarket       = [8]byte{0xdb, 0xbe, 0xd5, 0x37, 0x14, 0xe3, 0xc6, 0x9a}
	discPosition     = [8]byte{0xaa, 0xbc, 0x8f, 0xe4, 0x7a, 0x40, 0xf7, 0xd0}
	discRaceMarket   = [8]byte{0x0d, 0x92, 0x66, 0x15, 0xe1, 0xc4, 0x3f, 0x58}
	discRacePosition = [8]byte{0x67, 0xf1, 0x1d, 0xc9, 0x32, 0x8e, 0xab, 0x05}
	discProfile      = [8]byte{0x20, 0x4c, 0xc1, 0x7d, 0xe9, 0x5a, 0x06, 0xb3}
)

// Classify reads the discriminator tag at the start of data and returns the
// record kind it names. Buffers shorter than the tag, and tags that match no
// known record type, classify as KindUnknown.
func Classify(data []byte) Kind {
	if len(data) < DiscriminatorLen {
		return KindUnknown
	}
	var tag [8]byte
	copy(tag[:], data[:DiscriminatorLen])
	switch tag {
	case discMarket:
		return KindMarket
	case discPosition:
		return KindPosition
	case discRaceMarket:
		return KindRaceMarket
	case discRacePosition:
		return KindRacePosition
	case discProfile:
		return KindProfile
	default:
		return KindUnknown
	}
}

// Discriminator returns the 8-byte tag for a record kind. Test fixtures use
// it to build valid payloads.
func Discriminator(k Kind) [8]byte {
	switch k {
	case KindMarket:
		return discMarket
	case KindPosition:
		return discPosition
	case KindRaceMarket:
		return discRaceMarket
	case KindRacePosition:
		return discRacePosition
	case KindProfile:
		return discProfile
	default:
		return [8]byte{}
	}
}

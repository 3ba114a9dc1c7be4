package program

import (
	"github.com/pariscan/pariscan/internal/domain"
)

// DecodeBatch classifies and decodes one snapshot of raw accounts. Unknown
// discriminators and malformed payloads are counted in Skipped and otherwise
// ignored; a single bad account never aborts the batch. The result depends
// only on the input bytes, so batches may be sharded across goroutines and
// merged.
func DecodeBatch(accounts []domain.RawAccount) domain.DecodedSnapshot {
	var snap domain.DecodedSnapshot
	for _, acc := range accounts {
		decodeInto(&snap, acc)
	}
	return snap
}

// Merge folds other into snap. Decoding is an associative, commutative
// accumulation, so shard results can be merged in any order.
func Merge(snap, other domain.DecodedSnapshot) domain.DecodedSnapshot {
	snap.Markets = append(snap.Markets, other.Markets...)
	snap.Positions = append(snap.Positions, other.Positions...)
	snap.RaceMarkets = append(snap.RaceMarkets, other.RaceMarkets...)
	snap.RacePositions = append(snap.RacePositions, other.RacePositions...)
	snap.Profiles = append(snap.Profiles, other.Profiles...)
	snap.Skipped += other.Skipped
	return snap
}

// decodeInto is the single dispatch site over the record kinds. Anything that
// does not decode cleanly increments Skipped.
func decodeInto(snap *domain.DecodedSnapshot, acc domain.RawAccount) {
	switch Classify(acc.Data) {
	case KindMarket:
		m, err := DecodeMarket(acc.Data)
		if err != nil {
			snap.Skipped++
			return
		}
		snap.Markets = append(snap.Markets, m)
	case KindPosition:
		p, err := DecodePosition(acc.Data)
		if err != nil {
			snap.Skipped++
			return
		}
		snap.Positions = append(snap.Positions, p)
	case KindRaceMarket:
		m, err := DecodeRaceMarket(acc.Data)
		if err != nil {
			snap.Skipped++
			return
		}
		snap.RaceMarkets = append(snap.RaceMarkets, m)
	case KindRacePosition:
		p, err := DecodeRacePosition(acc.Data)
		if err != nil {
			snap.Skipped++
			return
		}
		snap.RacePositions = append(snap.RacePositions, p)
	case KindProfile:
		p, err := DecodeProfile(acc.Data)
		if err != nil {
			snap.Skipped++
			return
		}
		snap.Profiles = append(snap.Profiles, p)
	default:
		// Foreign account kind; the ledger holds plenty. Not an error.
		snap.Skipped++
	}
}

package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// SnapshotArchiver writes decoded snapshots to cold storage.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, snap DecodedSnapshot) (string, error)
}

// DecodedSnapshot bundles everything that survived decoding one batch of raw
// accounts, plus skip diagnostics the caller may expose.
type DecodedSnapshot struct {
	Markets       []Market
	Positions     []Position
	RaceMarkets   []RaceMarket
	RacePositions []RacePosition
	Profiles      []CreatorProfile
	Skipped       int // unknown discriminator or malformed record
}

// Decoded returns the number of records that survived decoding.
func (s DecodedSnapshot) Decoded() int {
	return len(s.Markets) + len(s.Positions) + len(s.RaceMarkets) +
		len(s.RacePositions) + len(s.Profiles)
}

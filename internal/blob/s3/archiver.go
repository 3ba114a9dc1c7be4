package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pariscan/pariscan/internal/domain"
)

// Archiver implements domain.SnapshotArchiver by serializing each decoded
// snapshot to JSONL and uploading it to object storage, one object per scan.
//
// Snapshots are cold data only: the live report is served from Redis, so a
// failed archive never blocks a scan.
type Archiver struct {
	writer domain.BlobWriter

	// now is swappable for tests.
	now func() time.Time
}

// NewArchiver creates an Archiver writing through the given blob writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{
		writer: writer,
		now:    time.Now,
	}
}

// snapshotLine is one JSONL record. Mixing record kinds in a single object
// keeps each scan self-contained; the kind tag makes the lines filterable.
type snapshotLine struct {
	Kind         string                 `json:"kind"`
	Market       *domain.Market         `json:"market,omitempty"`
	Position     *domain.Position       `json:"position,omitempty"`
	RaceMarket   *domain.RaceMarket     `json:"race_market,omitempty"`
	RacePosition *domain.RacePosition   `json:"race_position,omitempty"`
	Profile      *domain.CreatorProfile `json:"profile,omitempty"`
}

// ArchiveSnapshot uploads the snapshot as newline-delimited JSON to
// snapshots/YYYY/MM/DD/<unix-nano>.jsonl and returns the object key.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, snap domain.DecodedSnapshot) (string, error) {
	buf, err := marshalSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive snapshot marshal: %w", err)
	}

	path := snapshotPath(a.now().UTC())
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return "", fmt.Errorf("s3blob: archive snapshot upload: %w", err)
	}
	return path, nil
}

// snapshotPath builds the object key for one scan, partitioned by day.
//
//	snapshots/2026/08/26/1756166400123456789.jsonl
func snapshotPath(t time.Time) string {
	return fmt.Sprintf("snapshots/%s/%d.jsonl", t.Format("2006/01/02"), t.UnixNano())
}

func marshalSnapshot(snap domain.DecodedSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	encode := func(line snapshotLine) error {
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("jsonl encode %s record: %w", line.Kind, err)
		}
		return nil
	}

	for i := range snap.Markets {
		if err := encode(snapshotLine{Kind: "market", Market: &snap.Markets[i]}); err != nil {
			return nil, err
		}
	}
	for i := range snap.Positions {
		if err := encode(snapshotLine{Kind: "position", Position: &snap.Positions[i]}); err != nil {
			return nil, err
		}
	}
	for i := range snap.RaceMarkets {
		if err := encode(snapshotLine{Kind: "race_market", RaceMarket: &snap.RaceMarkets[i]}); err != nil {
			return nil, err
		}
	}
	for i := range snap.RacePositions {
		if err := encode(snapshotLine{Kind: "race_position", RacePosition: &snap.RacePositions[i]}); err != nil {
			return nil, err
		}
	}
	for i := range snap.Profiles {
		if err := encode(snapshotLine{Kind: "profile", Profile: &snap.Profiles[i]}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

package pipeline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pariscan/pariscan/internal/domain"
	"github.com/pariscan/pariscan/internal/program"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// profileAccount builds a valid creator profile record, the simplest of the
// five layouts.
func profileAccount(name string) domain.RawAccount {
	disc := program.Discriminator(program.KindProfile)
	data := append([]byte{}, disc[:]...)
	var owner [32]byte
	owner[0] = 1
	data = append(data, owner[:]...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(name)))
	data = append(data, name...)
	data = binary.LittleEndian.AppendUint32(data, 2)
	return domain.RawAccount{Data: data}
}

type fakeSource struct {
	accounts []domain.RawAccount
	err      error
}

func (f *fakeSource) ProgramAccounts(context.Context, string) ([]domain.RawAccount, error) {
	return f.accounts, f.err
}

func TestScannerShardsAndMerges(t *testing.T) {
	var accounts []domain.RawAccount
	for i := 0; i < 25; i++ {
		accounts = append(accounts, profileAccount("creator"))
	}
	// Two junk accounts scattered in.
	accounts = append(accounts, domain.RawAccount{Data: []byte{1, 2, 3}})
	accounts = append(accounts, domain.RawAccount{})

	s := NewScanner(&fakeSource{accounts: accounts}, "prog", 4, testLogger())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 27, result.Accounts)
	assert.Len(t, result.Snapshot.Profiles, 25)
	assert.Equal(t, 2, result.Snapshot.Skipped)
}

func TestScannerEmptySweep(t *testing.T) {
	s := NewScanner(&fakeSource{}, "prog", 4, testLogger())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Accounts)
	assert.Zero(t, result.Snapshot.Decoded())
}

func TestScannerFetchError(t *testing.T) {
	s := NewScanner(&fakeSource{err: errors.New("rpc down")}, "prog", 1, testLogger())
	_, err := s.Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc down")
}

type fakeCache struct {
	report domain.Report
	err    error
}

func (c *fakeCache) Set(_ context.Context, r domain.Report) error {
	c.report = r
	return c.err
}
func (c *fakeCache) Get(context.Context) (domain.Report, error) { return c.report, nil }
func (c *fakeCache) Invalidate(context.Context) error           { return nil }

type fakeBus struct {
	channel string
	payload []byte
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.channel = channel
	b.payload = payload
	return nil
}
func (b *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }

type fakeStore struct {
	run   domain.ScanRun
	stats []domain.AgentStats
}

func (s *fakeStore) InsertRun(_ context.Context, run domain.ScanRun) error {
	s.run = run
	return nil
}
func (s *fakeStore) InsertAgentStats(_ context.Context, _ string, stats []domain.AgentStats) error {
	s.stats = stats
	return nil
}
func (s *fakeStore) GetRun(context.Context, string) (domain.ScanRun, error) {
	return domain.ScanRun{}, domain.ErrNotFound
}
func (s *fakeStore) ListRuns(context.Context, domain.ListOpts) ([]domain.ScanRun, error) {
	return nil, nil
}
func (s *fakeStore) ListAgentHistory(context.Context, domain.PublicKey, domain.ListOpts) ([]domain.AgentStats, error) {
	return nil, nil
}

func TestPublisherFansOut(t *testing.T) {
	cache := &fakeCache{}
	bus := &fakeBus{}
	store := &fakeStore{}
	p := NewPublisher(cache, store, bus, nil, nil, testLogger())

	result := ScanResult{
		Accounts: 10,
		Snapshot: domain.DecodedSnapshot{Skipped: 2},
		Report: domain.Report{
			GeneratedAt: time.Now().UTC(),
			Leaderboard: []domain.AgentStats{{DisplayName: "alice"}},
			Totals:      domain.ReportTotals{Agents: 1, Markets: 3, RaceMarkets: 1},
		},
	}

	require.NoError(t, p.Publish(context.Background(), result))

	assert.NotEmpty(t, cache.report.ScanID)
	assert.Equal(t, cache.report.ScanID, store.run.ID)
	assert.Equal(t, 10, store.run.Accounts)
	assert.Equal(t, 4, store.run.Markets)
	assert.Len(t, store.stats, 1)

	assert.Equal(t, ChannelReport, bus.channel)
	var broadcast domain.Report
	require.NoError(t, json.Unmarshal(bus.payload, &broadcast))
	assert.Equal(t, cache.report.ScanID, broadcast.ScanID)
}

func TestPublisherCacheFailureIsFatal(t *testing.T) {
	p := NewPublisher(&fakeCache{err: errors.New("redis down")}, nil, nil, nil, nil, testLogger())
	err := p.Publish(context.Background(), ScanResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestPublisherNilSinks(t *testing.T) {
	cache := &fakeCache{}
	p := NewPublisher(cache, nil, nil, nil, nil, testLogger())
	require.NoError(t, p.Publish(context.Background(), ScanResult{}))
	assert.NotEmpty(t, cache.report.ScanID)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pariscan/pariscan/internal/domain"
)

const reportKey = "report:latest"

// ReportCache implements domain.ReportCache using a single Redis key holding
// the JSON-serialized latest report. The cache is an explicit handle passed
// to the components that need it; nothing reads it implicitly.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache creates a ReportCache backed by the given Client. ttl bounds
// how long a stale report may be served if the scan loop stops producing
// fresh ones; zero means no expiry.
func NewReportCache(c *Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		rdb: c.Underlying(),
		ttl: ttl,
	}
}

// Set stores the report with the cache TTL.
func (rc *ReportCache) Set(ctx context.Context, report domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis: marshal report %s: %w", report.ScanID, err)
	}
	if err := rc.rdb.Set(ctx, reportKey, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set report %s: %w", report.ScanID, err)
	}
	return nil
}

// Get retrieves the latest report. It returns domain.ErrNotFound when no
// report is cached (or the TTL expired).
func (rc *ReportCache) Get(ctx context.Context) (domain.Report, error) {
	data, err := rc.rdb.Get(ctx, reportKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Report{}, domain.ErrNotFound
		}
		return domain.Report{}, fmt.Errorf("redis: get report: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.Report{}, fmt.Errorf("redis: unmarshal report: %w", err)
	}
	return report, nil
}

// Invalidate removes the cached report.
func (rc *ReportCache) Invalidate(ctx context.Context) error {
	if err := rc.rdb.Del(ctx, reportKey).Err(); err != nil {
		return fmt.Errorf("redis: invalidate report: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ReportCache = (*ReportCache)(nil)

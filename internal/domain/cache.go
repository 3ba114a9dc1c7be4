package domain

import (
	"context"
	"time"
)

// ReportCache holds the latest built report for fast serving. Implementations
// carry their own TTL policy; a stale or missing report yields ErrNotFound.
type ReportCache interface {
	Set(ctx context.Context, report Report) error
	Get(ctx context.Context) (Report, error)
	Invalidate(ctx context.Context) error
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// SignalBus provides pub/sub fan-out between the pipeline and the WebSocket
// hub. Payloads are opaque bytes (JSON in practice).
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrBadKeyLength = errors.New("public key must be 32 bytes")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrContextDone  = errors.New("context cancelled")
	ErrRPCUnhealthy = errors.New("rpc endpoint unhealthy")
)

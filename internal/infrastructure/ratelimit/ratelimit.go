// Package ratelimit provides short-window request limiting, independent of
// the long-window quota ledger.
package ratelimit

import (
	"context"
	"time"
)

// Decision reports the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

// Limiter enforces a fixed-window request cap per key. Keys are either
// "user:<uuid>" for authenticated callers or "ip:<addr>" for anonymous ones.
// Implementations must be safe for concurrent use and must not lose updates
// for concurrent requests on the same key.
type Limiter interface {
	// Allow opens a new window if the current one has expired, then admits
	// the request only if the window count is below limit. On rejection,
	// RetryAfter is the time until the window expires.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Decision, error)
}

package port

import (
	"context"
	"time"
)

// RateLimitReservation is the outcome of one rate-limit check.
type RateLimitReservation struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimitStore reserves one attempt inside a sliding window keyed by
// identifier (typically a client IP).
type RateLimitStore interface {
	Reserve(ctx context.Context, identifier string, limit int, window time.Duration, at time.Time) (RateLimitReservation, error)
}

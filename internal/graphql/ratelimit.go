package graphql

import (
	"context"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate in requests per second.
	// The backend publishes no quota headers, so the client self-limits.
	ProactiveRate = 4

	// ProactiveBurst allows short bursts when several participants page
	// at once.
	ProactiveBurst = 8
)

// RateLimiter throttles outbound requests with a token bucket so a sync
// pass across many participants cannot hammer the backend.
type RateLimiter struct {
	bucket *rate.Limiter
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), ProactiveBurst),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

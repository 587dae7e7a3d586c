// Package ratelimit provides the token bucket shared by all RDAP queries.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the default refill rate in tokens per second.
	DefaultRate = 10
	// DefaultBurst is the default bucket capacity.
	DefaultBurst = 10
)

// Limiter is a token bucket. Tokens accumulate up to the burst capacity
// while idle; a caller that finds the bucket empty sleeps until the next
// token is due rather than spinning.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a limiter refilling at perSecond tokens per second with the
// given capacity.
func New(perSecond float64, burst int) (*Limiter, error) {
	if perSecond <= 0 {
		return nil, fmt.Errorf("ratelimit: rate must be positive, got %v", perSecond)
	}
	if burst <= 0 {
		return nil, fmt.Errorf("ratelimit: burst must be positive, got %d", burst)
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}, nil
}

// Wait blocks the calling goroutine until a token is available or the
// context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces calls against a remote system
type Limiter interface {
	// Wait blocks until the next call may proceed or ctx is done
	Wait(ctx context.Context) error
}

// FixedDelay waits the same duration on every call. The crawl uses it after
// each fetched company.
type FixedDelay struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFixedDelay creates a FixedDelay pacer
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay, sleep: Sleep}
}

// Delay returns the configured pause
func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

// Wait pauses for the configured delay
func (f *FixedDelay) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	return f.sleep(ctx, f.delay)
}

// Sleep pauses for d, returning early with ctx.Err() when ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateLimiter allows at most rps calls per second with a burst of one
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter. A non-positive rps disables limiting.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the limiter grants a token
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Nop never waits
type Nop struct{}

// Wait returns ctx.Err()
func (Nop) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit throttles outbound calls to literature sources. Each
// source gets its own Limiter combining a fixed requests-per-second budget
// with an exponential backoff state machine keyed by consecutive failures.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MaxBackoff caps the backoff wait. Declared as a var so tests can shrink it.
var MaxBackoff = 60 * time.Second

// DefaultBaseDelay is the backoff base before doubling.
var DefaultBaseDelay = 1 * time.Second

// Limiter enforces a per-source request budget. After a failure, the next
// Wait additionally sleeps base*2^(failures-1), capped at MaxBackoff. A
// success resets the failure count, returning the limiter to its normal
// state.
type Limiter struct {
	limiter   *rate.Limiter
	baseDelay time.Duration

	mu       sync.Mutex
	failures int
}

// New returns a Limiter allowing requestsPerSecond sustained calls with a
// burst of one. A non-positive rate defaults to 3 req/s.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 3
	}
	return &Limiter{
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseDelay: DefaultBaseDelay,
	}
}

// Wait blocks until the rate budget admits another call. If the limiter is
// backing off after failures, Wait first sleeps the backoff interval. It
// returns early with ctx.Err() on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	if d := l.backoffDelay(); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return l.limiter.Wait(ctx)
}

// backoffDelay returns base*2^(failures-1) capped at MaxBackoff, or zero in
// the normal state.
func (l *Limiter) backoffDelay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures == 0 {
		return 0
	}
	d := l.baseDelay
	for i := 1; i < l.failures; i++ {
		d *= 2
		if d >= MaxBackoff {
			return MaxBackoff
		}
	}
	if d > MaxBackoff {
		d = MaxBackoff
	}
	return d
}

// Failure records a failed call, moving the limiter toward longer waits.
func (l *Limiter) Failure() {
	l.mu.Lock()
	l.failures++
	l.mu.Unlock()
}

// Success resets the failure count.
func (l *Limiter) Success() {
	l.mu.Lock()
	l.failures = 0
	l.mu.Unlock()
}

// Failures returns the current consecutive-failure count.
func (l *Limiter) Failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

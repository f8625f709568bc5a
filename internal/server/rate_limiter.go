// Package server applies a token bucket per connection so one client cannot
// flood its room.
package server

import (
	"time"

	"golang.org/x/time/rate"
)

// newRateLimiter allows burst events at once, refilled at burst per interval.
func newRateLimiter(cfg RateLimitConfig) *rate.Limiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = time.Second
	}

	return rate.NewLimiter(rate.Every(interval/time.Duration(burst)), burst)
}

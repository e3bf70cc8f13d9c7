package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultRPM is the default requests-per-minute budget for hosted model
// calls. Free-tier Gemini flash allows well above this; the margin keeps
// bursty voice sessions from tripping provider quotas.
const DefaultRPM = 60

// RateLimiter throttles outbound model calls with an in-process token
// bucket. Every Complete* call waits on it before hitting the provider.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing rpm requests per minute with a
// burst of one. rpm <= 0 selects DefaultRPM.
func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		rpm = DefaultRPM
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Wait blocks until a request slot is available or the context expires.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

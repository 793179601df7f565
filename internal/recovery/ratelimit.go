/**
 * Rate Limit Recovery Strategy
 *
 * Paces retries of rate-limited operations through a token bucket so the
 * recovery path itself cannot hammer an already throttling backend.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/roshni-games/resilience/internal/errors"
)

// RateLimitStrategy handles rate-limit rejections by waiting out the token
// bucket on top of a growing floor delay.
type RateLimitStrategy struct {
	name        string
	maxAttempts int
	baseDelay   time.Duration
	limiter     *rate.Limiter
}

// NewRateLimit creates a rate limit strategy allowing retriesPerSec retry
// invocations with the given burst.
func NewRateLimit(maxAttempts int, baseDelay time.Duration, retriesPerSec float64, burst int) *RateLimitStrategy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if retriesPerSec <= 0 {
		retriesPerSec = 1
	}
	if burst < 1 {
		burst = 1
	}

	return &RateLimitStrategy{
		name:        "rate_limit",
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		limiter:     rate.NewLimiter(rate.Limit(retriesPerSec), burst),
	}
}

// Name implements Strategy.
func (s *RateLimitStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy.
func (s *RateLimitStrategy) MaxAttempts() int { return s.maxAttempts }

// CanHandle implements Strategy.
func (s *RateLimitStrategy) CanHandle(err *errors.AppError) bool {
	return err != nil && err.Kind == errors.KindNetworkRateLimited
}

// RetryDelay implements Strategy. The delay is whichever is longer: the
// token bucket's reservation delay or a linear floor that grows with the
// attempt number. Severe occurrences back off twice as hard.
func (s *RateLimitStrategy) RetryDelay(err *errors.AppError, attempt int) time.Duration {
	floor := s.baseDelay * time.Duration(attempt)
	if err != nil && err.Severity >= errors.SeverityHigh {
		floor *= 2
	}

	res := s.limiter.Reserve()
	if !res.OK() {
		return floor
	}
	if d := res.Delay(); d > floor {
		return d
	}
	return floor
}

/**
 * Retry Strategy with Exponential Backoff
 *
 * Retries a bounded set of error kinds with exponentially growing delays.
 * Jitter (symmetric ±10%) is opt-in and disabled by default so retry
 * timing stays deterministic unless a deployment asks otherwise.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-13
 */

package recovery

import (
	"math/rand"
	"sync"
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// RetryStrategy retries transient failures with exponential backoff.
type RetryStrategy struct {
	name        string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	multiplier  float64
	kinds       map[errors.Kind]bool

	jitter bool
	randMu sync.Mutex
	rand   *rand.Rand
}

// NewRetry creates a retry strategy handling the given kinds.
func NewRetry(name string, maxAttempts int, base, max time.Duration, multiplier float64, kinds ...errors.Kind) *RetryStrategy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if multiplier <= 0 {
		multiplier = defaultBackoffMult
	}

	set := make(map[errors.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}

	return &RetryStrategy{
		name:        name,
		maxAttempts: maxAttempts,
		baseDelay:   base,
		maxDelay:    max,
		multiplier:  multiplier,
		kinds:       set,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewNetworkRetry handles transient network connectivity failures.
func NewNetworkRetry(maxAttempts int, base, max time.Duration, multiplier float64) *RetryStrategy {
	return NewRetry("network_retry", maxAttempts, base, max, multiplier,
		errors.KindNetworkConnection,
		errors.KindNetworkTimeout,
		errors.KindNetworkUnavailable,
	)
}

// NewGameplayRetry handles failed save/load operations.
func NewGameplayRetry(maxAttempts int, base, max time.Duration, multiplier float64) *RetryStrategy {
	return NewRetry("gameplay_retry", maxAttempts, base, max, multiplier,
		errors.KindGameplaySaveFailed,
		errors.KindGameplayLoadFailed,
	)
}

// WithJitter enables ±10% jitter on computed delays.
func (s *RetryStrategy) WithJitter() *RetryStrategy {
	s.jitter = true
	return s
}

// Name implements Strategy.
func (s *RetryStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy.
func (s *RetryStrategy) MaxAttempts() int { return s.maxAttempts }

// CanHandle implements Strategy.
func (s *RetryStrategy) CanHandle(err *errors.AppError) bool {
	if err == nil {
		return false
	}
	return s.kinds[err.Kind]
}

// RetryDelay implements Strategy: min(maxDelay, base*multiplier^(attempt-1)).
func (s *RetryStrategy) RetryDelay(_ *errors.AppError, attempt int) time.Duration {
	d := backoffDelay(attempt, s.baseDelay, s.maxDelay, s.multiplier)
	if s.jitter {
		s.randMu.Lock()
		d = jitterDelay(d, s.rand)
		s.randMu.Unlock()
	}
	return d
}

/**
 * Recovery Strategy Contract
 *
 * A strategy decides whether it can handle a classified error and what its
 * retry policy looks like. Capability interfaces (Resolver, Gate) let the
 * orchestrator discover one-shot resolution and circuit admission without
 * widening the base contract.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-13
 */

package recovery

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// Strategy is the base contract every recovery strategy implements.
type Strategy interface {
	// Name identifies the strategy in results, events and logs.
	Name() string

	// MaxAttempts bounds the number of operation invocations for one
	// resolution, including the first try.
	MaxAttempts() int

	// CanHandle reports whether the strategy applies to the error.
	CanHandle(err *errors.AppError) bool

	// RetryDelay computes the wait before the attempt following attempt
	// number `attempt`. The triggering error is an explicit argument; a
	// strategy must never rely on ambient state to know what it is
	// recovering from.
	RetryDelay(err *errors.AppError, attempt int) time.Duration
}

// Resolver is implemented by one-shot strategies that produce a terminal
// result instead of re-invoking the operation.
type Resolver interface {
	// Resolve produces the terminal result and, when the strategy can
	// substitute one, a replacement value for the failed operation.
	Resolve(ctx context.Context, err *errors.AppError) (interface{}, *Result)
}

// Gate is implemented by strategies that can refuse operation invocations
// outright (circuit breakers). Allow is consulted before every invocation;
// a nil err means the pre-call check, where any tripped circuit rejects.
type Gate interface {
	Allow(err *errors.AppError) error
	RecordResult(err *errors.AppError, success bool)
}

// defaultBackoffBase and friends are the fallback policy used wherever a
// strategy has no better information.
const (
	defaultBackoffBase = 500 * time.Millisecond
	defaultBackoffMax  = 30 * time.Second
	defaultBackoffMult = 2.0
)

// backoffDelay computes min(maxDelay, base*mult^(attempt-1)).
func backoffDelay(attempt int, base, max time.Duration, mult float64) time.Duration {
	if attempt <= 1 {
		if base > max {
			return max
		}
		return base
	}

	d := float64(base) * math.Pow(mult, float64(attempt-1))
	if d > float64(max) {
		d = float64(max)
	}
	return time.Duration(d)
}

// jitterDelay perturbs d by a symmetric ±10%. Jitter is opt-in because it
// trades determinism for herd avoidance.
func jitterDelay(d time.Duration, rnd *rand.Rand) time.Duration {
	if d <= 0 {
		return d
	}
	delta := 0.1 * float64(d)
	return time.Duration(float64(d) - delta + rnd.Float64()*2*delta)
}

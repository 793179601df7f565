/**
 * Composite Recovery Strategy
 *
 * Delegates to an ordered list of sub-strategies: the first whose CanHandle
 * accepts the triggering error wins. The error is always passed explicitly;
 * delegation never depends on which error happened to be in scope when the
 * composite was built.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// CompositeStrategy combines sub-strategies in priority order.
type CompositeStrategy struct {
	name         string
	subs         []Strategy
	defaultDelay time.Duration
}

// NewComposite creates a composite over subs. defaultDelay is used when no
// sub-strategy matches the error passed to RetryDelay.
func NewComposite(name string, defaultDelay time.Duration, subs ...Strategy) *CompositeStrategy {
	return &CompositeStrategy{
		name:         name,
		subs:         subs,
		defaultDelay: defaultDelay,
	}
}

// Name implements Strategy.
func (s *CompositeStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy: the largest budget among sub-strategies,
// so the composite never cuts a delegate short.
func (s *CompositeStrategy) MaxAttempts() int {
	max := 1
	for _, sub := range s.subs {
		if sub.MaxAttempts() > max {
			max = sub.MaxAttempts()
		}
	}
	return max
}

// CanHandle implements Strategy: logical OR over sub-strategies.
func (s *CompositeStrategy) CanHandle(err *errors.AppError) bool {
	for _, sub := range s.subs {
		if sub.CanHandle(err) {
			return true
		}
	}
	return false
}

// RetryDelay implements Strategy: the first matching sub-strategy's delay,
// or the default when none match.
func (s *CompositeStrategy) RetryDelay(err *errors.AppError, attempt int) time.Duration {
	if sub := s.match(err); sub != nil {
		return sub.RetryDelay(err, attempt)
	}
	return s.defaultDelay
}

// match returns the first sub-strategy that handles err.
func (s *CompositeStrategy) match(err *errors.AppError) Strategy {
	for _, sub := range s.subs {
		if sub.CanHandle(err) {
			return sub
		}
	}
	return nil
}

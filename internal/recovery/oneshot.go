/**
 * One-Shot Recovery Strategies
 *
 * Fallback, cache, offline and user-intervention strategies never retry
 * the failing operation; each produces a terminal result on the first
 * failure it handles.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/roshni-games/resilience/internal/cache"
	"github.com/roshni-games/resilience/internal/errors"
)

// kindSet is the shared allowlist helper for the one-shot strategies.
type kindSet map[errors.Kind]bool

func newKindSet(kinds []errors.Kind) kindSet {
	set := make(kindSet, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

func (s kindSet) has(err *errors.AppError) bool {
	return err != nil && s[err.Kind]
}

// FallbackStrategy substitutes a precomputed value when the primary
// operation fails.
type FallbackStrategy struct {
	name          string
	fallbackOp    string
	fallbackValue interface{}
	kinds         kindSet
}

// NewFallback creates a fallback strategy. fallbackOp names the substitute
// operation for diagnostics; fallbackValue is what the caller receives.
func NewFallback(fallbackOp string, fallbackValue interface{}, kinds ...errors.Kind) *FallbackStrategy {
	return &FallbackStrategy{
		name:          "fallback",
		fallbackOp:    fallbackOp,
		fallbackValue: fallbackValue,
		kinds:         newKindSet(kinds),
	}
}

// Name implements Strategy.
func (s *FallbackStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy: one-shot.
func (s *FallbackStrategy) MaxAttempts() int { return 1 }

// CanHandle implements Strategy.
func (s *FallbackStrategy) CanHandle(err *errors.AppError) bool { return s.kinds.has(err) }

// RetryDelay implements Strategy; never consulted for one-shot strategies.
func (s *FallbackStrategy) RetryDelay(_ *errors.AppError, _ int) time.Duration { return 0 }

// Resolve implements Resolver.
func (s *FallbackStrategy) Resolve(_ context.Context, err *errors.AppError) (interface{}, *Result) {
	return s.fallbackValue, &Result{
		Success:      true,
		StrategyUsed: s.name,
		Attempts:     1,
		UserMessage:  fmt.Sprintf("Using %s instead.", s.fallbackOp),
	}
}

// CacheStrategy serves a previously cached value when the live operation
// fails, as long as the entry is fresh enough.
type CacheStrategy struct {
	name     string
	store    cache.Store
	maxAge   time.Duration
	cacheKey func(*errors.Context) string
	kinds    kindSet
}

// NewCache creates a cache strategy reading from store. Keys derive from the
// failing operation's name.
func NewCache(store cache.Store, maxAge time.Duration, kinds ...errors.Kind) *CacheStrategy {
	return &CacheStrategy{
		name:   "cache",
		store:  store,
		maxAge: maxAge,
		cacheKey: func(ectx *errors.Context) string {
			if ectx == nil {
				return "cache:unknown"
			}
			return "cache:" + ectx.Component + ":" + ectx.Operation
		},
		kinds: newKindSet(kinds),
	}
}

// Name implements Strategy.
func (s *CacheStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy: one-shot.
func (s *CacheStrategy) MaxAttempts() int { return 1 }

// CanHandle implements Strategy.
func (s *CacheStrategy) CanHandle(err *errors.AppError) bool { return s.kinds.has(err) }

// RetryDelay implements Strategy; never consulted for one-shot strategies.
func (s *CacheStrategy) RetryDelay(_ *errors.AppError, _ int) time.Duration { return 0 }

// Resolve implements Resolver: a hit younger than maxAge succeeds, anything
// else is terminal failure.
func (s *CacheStrategy) Resolve(ctx context.Context, err *errors.AppError) (interface{}, *Result) {
	entry, ok, getErr := s.store.Get(ctx, s.cacheKey(err.Context))
	if getErr != nil || !ok || entry.Age() > s.maxAge {
		return nil, &Result{
			Success:      false,
			StrategyUsed: s.name,
			Attempts:     1,
			FinalErr:     err,
			UserMessage:  userMessage(err),
		}
	}

	return entry.Value, &Result{
		Success:      true,
		StrategyUsed: s.name,
		Attempts:     1,
		UserMessage:  "Showing recently saved data.",
	}
}

// OfflineStrategy switches the caller onto the degraded offline data path
// backed by the persistent store.
type OfflineStrategy struct {
	name       string
	store      cache.Store
	offlineKey func(*errors.Context) string
	kinds      kindSet
}

// NewOffline creates an offline strategy reading snapshots from store.
func NewOffline(store cache.Store, kinds ...errors.Kind) *OfflineStrategy {
	return &OfflineStrategy{
		name:  "offline",
		store: store,
		offlineKey: func(ectx *errors.Context) string {
			if ectx == nil {
				return "offline:unknown"
			}
			return "offline:" + ectx.Component + ":" + ectx.Operation
		},
		kinds: newKindSet(kinds),
	}
}

// Name implements Strategy.
func (s *OfflineStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy: one-shot.
func (s *OfflineStrategy) MaxAttempts() int { return 1 }

// CanHandle implements Strategy.
func (s *OfflineStrategy) CanHandle(err *errors.AppError) bool { return s.kinds.has(err) }

// RetryDelay implements Strategy; never consulted for one-shot strategies.
func (s *OfflineStrategy) RetryDelay(_ *errors.AppError, _ int) time.Duration { return 0 }

// Resolve implements Resolver. Unlike the cache strategy there is no age
// limit: stale offline data beats no data.
func (s *OfflineStrategy) Resolve(ctx context.Context, err *errors.AppError) (interface{}, *Result) {
	entry, ok, getErr := s.store.Get(ctx, s.offlineKey(err.Context))
	if getErr != nil || !ok {
		return nil, &Result{
			Success:      false,
			StrategyUsed: s.name,
			Attempts:     1,
			FinalErr:     err,
			UserMessage:  "You're offline and no saved data is available.",
		}
	}

	return entry.Value, &Result{
		Success:      true,
		StrategyUsed: s.name,
		Attempts:     1,
		UserMessage:  "You're offline. Showing saved data.",
	}
}

// UserInterventionStrategy surfaces failures that only the user can fix.
// The operation is never silently retried for these.
type UserInterventionStrategy struct {
	name        string
	action      Action
	description string
	kinds       kindSet
}

// NewUserIntervention creates a user-intervention strategy for the given
// kinds.
func NewUserIntervention(action Action, description string, kinds ...errors.Kind) *UserInterventionStrategy {
	return &UserInterventionStrategy{
		name:        "user_intervention",
		action:      action,
		description: description,
		kinds:       newKindSet(kinds),
	}
}

// Name implements Strategy.
func (s *UserInterventionStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy: one-shot.
func (s *UserInterventionStrategy) MaxAttempts() int { return 1 }

// CanHandle implements Strategy.
func (s *UserInterventionStrategy) CanHandle(err *errors.AppError) bool { return s.kinds.has(err) }

// RetryDelay implements Strategy; never consulted for one-shot strategies.
func (s *UserInterventionStrategy) RetryDelay(_ *errors.AppError, _ int) time.Duration { return 0 }

// Resolve implements Resolver: always success=false with the action the
// presentation layer must offer.
func (s *UserInterventionStrategy) Resolve(_ context.Context, err *errors.AppError) (interface{}, *Result) {
	return nil, &Result{
		Success:        false,
		StrategyUsed:   s.name,
		Attempts:       1,
		FinalErr:       err,
		RequiredAction: s.action,
		UserMessage:    s.description,
	}
}

/**
 * Circuit Breaker Strategy
 *
 * Three-state guard (CLOSED -> OPEN -> HALF_OPEN) that stops invoking a
 * chronically failing operation until a cooldown elapses. State is kept per
 * triggering error kind; every read-modify-write is serialized so two
 * concurrent failures both count toward the threshold.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-13
 */

package recovery

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// CircuitState is the breaker state for one error kind.
type CircuitState int

const (
	// StateClosed admits all calls
	StateClosed CircuitState = iota

	// StateOpen rejects all calls until the recovery timeout elapses
	StateOpen

	// StateHalfOpen admits exactly one trial call
	StateHalfOpen
)

// String returns the string representation of a CircuitState.
func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is the sentinel every circuit rejection matches via
// errors.Is.
var ErrCircuitOpen = stderrors.New("circuit breaker open")

// CircuitOpenError carries which kind's circuit rejected the call and how
// long until the next trial is admitted.
type CircuitOpenError struct {
	Kind       errors.Kind
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s (retry in %s)", e.Kind, e.RetryAfter)
}

// Is makes errors.Is(err, ErrCircuitOpen) hold for rejections.
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

// BreakerState is a read-only snapshot of one kind's circuit.
type BreakerState struct {
	State         CircuitState
	Failures      int
	OpenedAt      time.Time
	LastFailureAt time.Time
}

type breakerEntry struct {
	state         CircuitState
	failures      int
	windowStart   time.Time
	openedAt      time.Time
	lastFailure   time.Time
	trialInFlight bool
}

// CircuitBreakerStrategy guards a set of error kinds with per-kind
// circuits.
type CircuitBreakerStrategy struct {
	name             string
	maxAttempts      int
	failureThreshold int
	recoveryTimeout  time.Duration
	monitoringPeriod time.Duration
	kinds            map[errors.Kind]bool

	mu      sync.Mutex
	entries map[errors.Kind]*breakerEntry

	// now is the clock, overridable in tests
	now func() time.Time
}

// NewCircuitBreaker creates a breaker for the given kinds.
func NewCircuitBreaker(name string, maxAttempts, failureThreshold int,
	recoveryTimeout, monitoringPeriod time.Duration, kinds ...errors.Kind) *CircuitBreakerStrategy {

	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if failureThreshold < 1 {
		failureThreshold = 1
	}

	set := make(map[errors.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}

	return &CircuitBreakerStrategy{
		name:             name,
		maxAttempts:      maxAttempts,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		monitoringPeriod: monitoringPeriod,
		kinds:            set,
		entries:          make(map[errors.Kind]*breakerEntry),
		now:              time.Now,
	}
}

// NewOutOfMemoryBreaker is the degenerate fatal-fast instance: a single
// out-of-memory failure opens the circuit.
func NewOutOfMemoryBreaker(recoveryTimeout time.Duration) *CircuitBreakerStrategy {
	return NewCircuitBreaker("oom_breaker", 1, 1, recoveryTimeout, 0,
		errors.KindSystemOutOfMemory)
}

// Name implements Strategy.
func (s *CircuitBreakerStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy.
func (s *CircuitBreakerStrategy) MaxAttempts() int { return s.maxAttempts }

// CanHandle implements Strategy.
func (s *CircuitBreakerStrategy) CanHandle(err *errors.AppError) bool {
	if err == nil {
		return false
	}
	return s.kinds[err.Kind]
}

// RetryDelay implements Strategy with the default backoff policy.
func (s *CircuitBreakerStrategy) RetryDelay(_ *errors.AppError, attempt int) time.Duration {
	return backoffDelay(attempt, defaultBackoffBase, defaultBackoffMax, defaultBackoffMult)
}

// Allow implements Gate. A nil err is the pre-invocation check: any tripped
// circuit rejects the call before the operation runs. An OPEN circuit whose
// recovery timeout has elapsed transitions to HALF_OPEN here and admits the
// call as its single trial.
func (s *CircuitBreakerStrategy) Allow(err *errors.AppError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if !s.kinds[err.Kind] {
			return nil
		}
		return s.admit(err.Kind, s.entry(err.Kind))
	}

	for kind, e := range s.entries {
		if rejection := s.admit(kind, e); rejection != nil {
			return rejection
		}
	}
	return nil
}

// admit decides one entry. Caller holds the lock.
func (s *CircuitBreakerStrategy) admit(kind errors.Kind, e *breakerEntry) error {
	switch e.state {
	case StateOpen:
		elapsed := s.now().Sub(e.openedAt)
		if elapsed < s.recoveryTimeout {
			return &CircuitOpenError{Kind: kind, RetryAfter: s.recoveryTimeout - elapsed}
		}
		e.state = StateHalfOpen
		e.trialInFlight = true
		return nil

	case StateHalfOpen:
		if e.trialInFlight {
			return &CircuitOpenError{Kind: kind, RetryAfter: 0}
		}
		e.trialInFlight = true
		return nil

	default:
		return nil
	}
}

// RecordResult implements Gate. A success resolves every in-flight trial:
// the invocation that just succeeded was whatever trial was admitted. A
// failure of an unguarded kind releases in-flight trials instead of
// consuming them, so the circuit's own next admission stays the trial.
func (s *CircuitBreakerStrategy) RecordResult(err *errors.AppError, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if success {
		for _, e := range s.entries {
			s.recordSuccess(e)
		}
		return
	}

	var failed *breakerEntry
	if err != nil && s.kinds[err.Kind] {
		failed = s.entry(err.Kind)
		s.recordFailure(failed)
	}

	for _, e := range s.entries {
		if e != failed && e.state == StateHalfOpen && e.trialInFlight {
			e.trialInFlight = false
		}
	}
}

// recordSuccess closes a half-open circuit and clears the failure count.
func (s *CircuitBreakerStrategy) recordSuccess(e *breakerEntry) {
	switch e.state {
	case StateHalfOpen:
		e.state = StateClosed
		e.failures = 0
		e.trialInFlight = false
	case StateClosed:
		e.failures = 0
	}
}

// recordFailure counts a failure within the monitoring period; reaching the
// threshold opens the circuit. A half-open trial failure reopens with a
// fresh timer.
func (s *CircuitBreakerStrategy) recordFailure(e *breakerEntry) {
	now := s.now()
	e.lastFailure = now

	switch e.state {
	case StateHalfOpen:
		e.state = StateOpen
		e.openedAt = now
		e.trialInFlight = false

	case StateClosed:
		if s.monitoringPeriod > 0 && !e.windowStart.IsZero() &&
			now.Sub(e.windowStart) > s.monitoringPeriod {
			e.failures = 0
		}
		if e.failures == 0 {
			e.windowStart = now
		}
		e.failures++
		if e.failures >= s.failureThreshold {
			e.state = StateOpen
			e.openedAt = now
		}
	}
}

// entry returns (creating if needed) the circuit for kind. Caller holds the
// lock.
func (s *CircuitBreakerStrategy) entry(kind errors.Kind) *breakerEntry {
	e, ok := s.entries[kind]
	if !ok {
		e = &breakerEntry{state: StateClosed}
		s.entries[kind] = e
	}
	return e
}

// State returns the current circuit state for kind.
func (s *CircuitBreakerStrategy) State(kind errors.Kind) CircuitState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[kind]; ok {
		return e.state
	}
	return StateClosed
}

// Snapshot returns a copy of every kind's circuit for diagnostics.
func (s *CircuitBreakerStrategy) Snapshot() map[errors.Kind]BreakerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[errors.Kind]BreakerState, len(s.entries))
	for kind, e := range s.entries {
		out[kind] = BreakerState{
			State:         e.state,
			Failures:      e.failures,
			OpenedAt:      e.openedAt,
			LastFailureAt: e.lastFailure,
		}
	}
	return out
}

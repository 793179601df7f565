/**
 * Circuit Breaker Strategy Tests
 *
 * Unit tests for state transitions, the single half-open trial, and the
 * monitoring window, all with an injected clock.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-13
 */

package recovery

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshni-games/resilience/internal/errors"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, recovery, monitoring time.Duration) (*CircuitBreakerStrategy, *fakeClock) {
	clock := newFakeClock()
	b := NewCircuitBreaker("test_breaker", 3, threshold, recovery, monitoring,
		errors.KindNetworkUnavailable)
	b.now = clock.Now
	return b, clock
}

func unavailable() *errors.AppError {
	return errors.New(errors.KindNetworkUnavailable, "503", nil)
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	b.RecordResult(err, false)
	assert.Equal(t, StateClosed, b.State(errors.KindNetworkUnavailable))

	b.RecordResult(err, false)
	assert.Equal(t, StateOpen, b.State(errors.KindNetworkUnavailable))
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	require.Equal(t, StateOpen, b.State(errors.KindNetworkUnavailable))

	rejection := b.Allow(err)
	require.Error(t, rejection)
	assert.True(t, stderrors.Is(rejection, ErrCircuitOpen))

	var coe *CircuitOpenError
	require.True(t, stderrors.As(rejection, &coe))
	assert.Equal(t, errors.KindNetworkUnavailable, coe.Kind)
	assert.Greater(t, coe.RetryAfter, time.Duration(0))

	// still rejecting just before the timeout
	clock.Advance(29 * time.Second)
	assert.Error(t, b.Allow(err))
}

func TestBreakerHalfOpenSingleTrial(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	clock.Advance(31 * time.Second)

	// first admission is the half-open trial
	require.NoError(t, b.Allow(err))
	assert.Equal(t, StateHalfOpen, b.State(errors.KindNetworkUnavailable))

	// a second concurrent call gets rejected while the trial is in flight
	assert.Error(t, b.Allow(err))
}

func TestBreakerTrialSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	clock.Advance(31 * time.Second)
	require.NoError(t, b.Allow(err))

	b.RecordResult(nil, true)
	assert.Equal(t, StateClosed, b.State(errors.KindNetworkUnavailable))
	assert.NoError(t, b.Allow(err))

	snap := b.Snapshot()[errors.KindNetworkUnavailable]
	assert.Equal(t, 0, snap.Failures)
}

func TestBreakerTrialFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	clock.Advance(31 * time.Second)
	require.NoError(t, b.Allow(err))

	b.RecordResult(err, false)
	assert.Equal(t, StateOpen, b.State(errors.KindNetworkUnavailable))

	// the open timer restarted: still rejecting before a fresh timeout
	clock.Advance(29 * time.Second)
	assert.Error(t, b.Allow(err))

	clock.Advance(2 * time.Second)
	assert.NoError(t, b.Allow(err))
}

func TestBreakerUnmatchedFailureReleasesTrial(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	clock.Advance(31 * time.Second)
	require.NoError(t, b.Allow(err))

	// the trial invocation failed with a kind this breaker does not guard;
	// the trial slot must be released, not consumed
	b.RecordResult(errors.New(errors.KindValidation, "bad", nil), false)

	assert.Equal(t, StateHalfOpen, b.State(errors.KindNetworkUnavailable))
	assert.NoError(t, b.Allow(err))
}

func TestBreakerMonitoringWindowResets(t *testing.T) {
	b, clock := newTestBreaker(3, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	b.RecordResult(err, false)

	// old failures age out of the window
	clock.Advance(2 * time.Minute)
	b.RecordResult(err, false)
	assert.Equal(t, StateClosed, b.State(errors.KindNetworkUnavailable))

	b.RecordResult(err, false)
	b.RecordResult(err, false)
	assert.Equal(t, StateOpen, b.State(errors.KindNetworkUnavailable))
}

func TestBreakerSuccessResetsClosedFailures(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second, time.Minute)
	err := unavailable()

	b.RecordResult(err, false)
	b.RecordResult(err, false)
	b.RecordResult(nil, true)

	b.RecordResult(err, false)
	b.RecordResult(err, false)
	assert.Equal(t, StateClosed, b.State(errors.KindNetworkUnavailable))
}

func TestBreakerIgnoresUnguardedKinds(t *testing.T) {
	b, _ := newTestBreaker(1, 30*time.Second, time.Minute)
	other := errors.New(errors.KindValidation, "bad", nil)

	b.RecordResult(other, false)
	assert.False(t, b.CanHandle(other))
	assert.NoError(t, b.Allow(other))
	assert.Empty(t, b.Snapshot())
}

func TestBreakerPreCallCheck(t *testing.T) {
	b, _ := newTestBreaker(1, 30*time.Second, time.Minute)

	// nothing tripped: nil err admits
	assert.NoError(t, b.Allow(nil))

	b.RecordResult(unavailable(), false)
	assert.Error(t, b.Allow(nil))
}

func TestOutOfMemoryBreaker(t *testing.T) {
	b := NewOutOfMemoryBreaker(time.Minute)
	clock := newFakeClock()
	b.now = clock.Now

	oom := errors.New(errors.KindSystemOutOfMemory, "allocation failed", nil)
	require.True(t, b.CanHandle(oom))
	assert.Equal(t, 1, b.MaxAttempts())

	// one failure trips it
	b.RecordResult(oom, false)
	assert.Equal(t, StateOpen, b.State(errors.KindSystemOutOfMemory))
	assert.Error(t, b.Allow(nil))

	clock.Advance(61 * time.Second)
	assert.NoError(t, b.Allow(oom))
}

func TestCircuitOpenErrorMessage(t *testing.T) {
	coe := &CircuitOpenError{Kind: errors.KindNetworkUnavailable, RetryAfter: 5 * time.Second}
	assert.Contains(t, coe.Error(), "circuit")
	assert.True(t, stderrors.Is(coe, ErrCircuitOpen))
}

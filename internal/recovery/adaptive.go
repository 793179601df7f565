/**
 * Adaptive Recovery Strategy
 *
 * Catch-all strategy that learns per-(kind, severity) statistics from
 * handled errors and uses the learned average delay once it has seen enough
 * of them to trust itself. Confidence only grows, capped at 1.0, until an
 * explicit reset.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"sync"
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// Performance is the learned statistics for one (kind, severity) pair.
type Performance struct {
	// SuccessRate in [0,1]
	SuccessRate float64

	// AvgDelayMs is the running mean of delays used before attempts
	AvgDelayMs float64

	// Executions is how many outcomes fed into the statistics
	Executions int64

	// Confidence in [0,1]; monotonically non-decreasing until Reset
	Confidence float64
}

type perfKey struct {
	kind     errors.Kind
	severity errors.Severity
}

// AdaptiveStrategy is the lowest-priority catch-all: it handles everything,
// so it must be registered last.
type AdaptiveStrategy struct {
	name          string
	maxAttempts   int
	learningRate  float64
	minConfidence float64

	baseDelay  time.Duration
	maxDelay   time.Duration
	multiplier float64

	mu   sync.Mutex
	perf map[perfKey]*Performance
}

// NewAdaptive creates an adaptive strategy. learningRate controls both
// confidence growth and delay scaling; minConfidence gates when learned
// delays replace the default exponential policy.
func NewAdaptive(maxAttempts int, learningRate, minConfidence float64) *AdaptiveStrategy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}
	if minConfidence <= 0 {
		minConfidence = 0.3
	}

	return &AdaptiveStrategy{
		name:          "adaptive",
		maxAttempts:   maxAttempts,
		learningRate:  learningRate,
		minConfidence: minConfidence,
		baseDelay:     defaultBackoffBase,
		maxDelay:      defaultBackoffMax,
		multiplier:    defaultBackoffMult,
		perf:          make(map[perfKey]*Performance),
	}
}

// Name implements Strategy.
func (s *AdaptiveStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy.
func (s *AdaptiveStrategy) MaxAttempts() int { return s.maxAttempts }

// CanHandle implements Strategy: unconditionally true.
func (s *AdaptiveStrategy) CanHandle(err *errors.AppError) bool { return err != nil }

// RetryDelay implements Strategy. The learned average, scaled up when the
// success rate is poor, is used only once confidence clears the bar.
func (s *AdaptiveStrategy) RetryDelay(err *errors.AppError, attempt int) time.Duration {
	s.mu.Lock()
	p, ok := s.perf[s.key(err)]
	var learned time.Duration
	if ok && p.Confidence >= s.minConfidence {
		scale := 1 + s.learningRate*(1-p.SuccessRate)
		learned = time.Duration(p.AvgDelayMs*scale) * time.Millisecond
	}
	s.mu.Unlock()

	if learned > 0 {
		return learned
	}
	return backoffDelay(attempt, s.baseDelay, s.maxDelay, s.multiplier)
}

// UpdatePerformance feeds one outcome into the statistics via incremental
// averages. Safe for concurrent callers; each key's read-modify-write runs
// under the lock so no outcome is lost.
func (s *AdaptiveStrategy) UpdatePerformance(err *errors.AppError, success bool, delay time.Duration) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(err)
	p, ok := s.perf[key]
	if !ok {
		p = &Performance{}
		s.perf[key] = p
	}

	n := float64(p.Executions)
	outcome := 0.0
	if success {
		outcome = 1.0
	}

	p.SuccessRate = (p.SuccessRate*n + outcome) / (n + 1)
	p.AvgDelayMs = (p.AvgDelayMs*n + float64(delay.Milliseconds())) / (n + 1)
	p.Executions++

	p.Confidence += s.learningRate
	if p.Confidence > 1.0 {
		p.Confidence = 1.0
	}
}

// Performance returns a snapshot of the statistics for (kind, severity).
func (s *AdaptiveStrategy) Performance(kind errors.Kind, severity errors.Severity) (Performance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.perf[perfKey{kind: kind, severity: severity}]
	if !ok {
		return Performance{}, false
	}
	return *p, true
}

// Snapshot returns a copy of all learned statistics for diagnostics.
func (s *AdaptiveStrategy) Snapshot() map[errors.Kind]map[errors.Severity]Performance {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[errors.Kind]map[errors.Severity]Performance)
	for key, p := range s.perf {
		bySev, ok := out[key.kind]
		if !ok {
			bySev = make(map[errors.Severity]Performance)
			out[key.kind] = bySev
		}
		bySev[key.severity] = *p
	}
	return out
}

// Reset discards all learned statistics. The only way confidence ever
// decreases.
func (s *AdaptiveStrategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perf = make(map[perfKey]*Performance)
}

func (s *AdaptiveStrategy) key(err *errors.AppError) perfKey {
	return perfKey{kind: err.Kind, severity: err.Severity}
}

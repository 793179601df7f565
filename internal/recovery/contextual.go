/**
 * Contextual Recovery Strategy
 *
 * Consults a snapshot of the user's situation (recent activity, role) to
 * decide whether retrying is worthwhile for a given error kind. Conditions
 * are a closed enumerated type resolved by exhaustive switch; there is no
 * string-keyed property lookup and no silent false fallthrough.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// Role is the user's privilege level.
type Role int

const (
	RoleGuest Role = iota
	RolePlayer
	RoleModerator
	RoleAdmin
)

// String returns the string representation of a Role.
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// UserContext is the externally supplied snapshot the strategy consults.
type UserContext struct {
	// LastActiveAt is when the user last interacted
	LastActiveAt time.Time

	// Role is the user's privilege level
	Role Role

	// Patience scales retry delays; 1.0 is neutral, higher means the user
	// tolerates longer waits
	Patience float64
}

// CheckKind enumerates the closed set of applicability checks.
type CheckKind int

const (
	// CheckAlways makes the kind unconditionally retryable
	CheckAlways CheckKind = iota

	// CheckActiveWithin requires recent user activity
	CheckActiveWithin

	// CheckRoleAtLeast requires a minimum role
	CheckRoleAtLeast
)

// Condition binds one error kind to one applicability check.
type Condition struct {
	Kind    errors.Kind
	Check   CheckKind
	Window  time.Duration // for CheckActiveWithin
	MinRole Role          // for CheckRoleAtLeast
}

// ContextualStrategy retries only when the user context satisfies the
// condition declared for the error's kind.
type ContextualStrategy struct {
	name        string
	maxAttempts int
	baseDelay   time.Duration
	snapshot    func() UserContext
	conditions  map[errors.Kind]Condition

	// now is the clock, overridable in tests
	now func() time.Time
}

// NewContextual creates a contextual strategy. snapshot supplies the
// current user context on every decision; kinds without a condition are not
// handled.
func NewContextual(maxAttempts int, baseDelay time.Duration,
	snapshot func() UserContext, conditions ...Condition) *ContextualStrategy {

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	byKind := make(map[errors.Kind]Condition, len(conditions))
	for _, c := range conditions {
		byKind[c.Kind] = c
	}

	return &ContextualStrategy{
		name:        "contextual",
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		snapshot:    snapshot,
		conditions:  byKind,
		now:         time.Now,
	}
}

// Name implements Strategy.
func (s *ContextualStrategy) Name() string { return s.name }

// MaxAttempts implements Strategy.
func (s *ContextualStrategy) MaxAttempts() int { return s.maxAttempts }

// CanHandle implements Strategy: the condition declared for the error's
// kind, evaluated against a fresh user context snapshot.
func (s *ContextualStrategy) CanHandle(err *errors.AppError) bool {
	if err == nil {
		return false
	}
	cond, ok := s.conditions[err.Kind]
	if !ok {
		return false
	}

	uctx := s.snapshot()
	switch cond.Check {
	case CheckAlways:
		return true
	case CheckActiveWithin:
		return !uctx.LastActiveAt.IsZero() && s.now().Sub(uctx.LastActiveAt) <= cond.Window
	case CheckRoleAtLeast:
		return uctx.Role >= cond.MinRole
	default:
		return false
	}
}

// RetryDelay implements Strategy: the base delay scaled by the user's
// patience factor.
func (s *ContextualStrategy) RetryDelay(_ *errors.AppError, attempt int) time.Duration {
	patience := s.snapshot().Patience
	if patience <= 0 {
		patience = 1.0
	}

	d := time.Duration(float64(s.baseDelay) * patience * float64(attempt))
	if d < s.baseDelay {
		d = s.baseDelay
	}
	return d
}

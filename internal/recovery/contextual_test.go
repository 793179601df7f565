/**
 * Contextual Strategy Tests
 *
 * Unit tests for condition evaluation against user context snapshots and
 * patience-scaled delays.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roshni-games/resilience/internal/errors"
)

func TestContextualCheckAlways(t *testing.T) {
	s := NewContextual(3, 100*time.Millisecond,
		func() UserContext { return UserContext{} },
		Condition{Kind: errors.KindNetworkConnection, Check: CheckAlways},
	)

	assert.True(t, s.CanHandle(errors.New(errors.KindNetworkConnection, "refused", nil)))
	// no condition declared for this kind
	assert.False(t, s.CanHandle(errors.New(errors.KindNetworkTimeout, "slow", nil)))
	assert.False(t, s.CanHandle(nil))
}

func TestContextualCheckActiveWithin(t *testing.T) {
	clock := newFakeClock()
	uctx := UserContext{LastActiveAt: clock.Now().Add(-2 * time.Minute)}

	s := NewContextual(3, 100*time.Millisecond,
		func() UserContext { return uctx },
		Condition{
			Kind:   errors.KindGameplaySaveFailed,
			Check:  CheckActiveWithin,
			Window: 5 * time.Minute,
		},
	)
	s.now = clock.Now

	err := errors.New(errors.KindGameplaySaveFailed, "write failed", nil)
	assert.True(t, s.CanHandle(err))

	// activity ages out of the window
	clock.Advance(10 * time.Minute)
	assert.False(t, s.CanHandle(err))

	// a user that was never active does not qualify
	uctx = UserContext{}
	assert.False(t, s.CanHandle(err))
}

func TestContextualCheckRoleAtLeast(t *testing.T) {
	role := RoleGuest
	s := NewContextual(3, 100*time.Millisecond,
		func() UserContext { return UserContext{Role: role} },
		Condition{
			Kind:    errors.KindGameplayInvalidState,
			Check:   CheckRoleAtLeast,
			MinRole: RoleModerator,
		},
	)

	err := errors.New(errors.KindGameplayInvalidState, "desync", nil)
	assert.False(t, s.CanHandle(err))

	role = RoleModerator
	assert.True(t, s.CanHandle(err))

	role = RoleAdmin
	assert.True(t, s.CanHandle(err))
}

func TestContextualDelayScalesWithPatience(t *testing.T) {
	patience := 1.0
	s := NewContextual(3, 100*time.Millisecond,
		func() UserContext { return UserContext{Patience: patience} },
		Condition{Kind: errors.KindNetworkConnection, Check: CheckAlways},
	)
	err := errors.New(errors.KindNetworkConnection, "refused", nil)

	assert.Equal(t, 100*time.Millisecond, s.RetryDelay(err, 1))
	assert.Equal(t, 200*time.Millisecond, s.RetryDelay(err, 2))

	patience = 2.0
	assert.Equal(t, 200*time.Millisecond, s.RetryDelay(err, 1))
	assert.Equal(t, 400*time.Millisecond, s.RetryDelay(err, 2))
}

func TestContextualDelayFloor(t *testing.T) {
	s := NewContextual(3, 100*time.Millisecond,
		func() UserContext { return UserContext{Patience: 0.1} },
		Condition{Kind: errors.KindNetworkConnection, Check: CheckAlways},
	)
	err := errors.New(errors.KindNetworkConnection, "refused", nil)

	// never below the base delay, even for impatient users
	assert.Equal(t, 100*time.Millisecond, s.RetryDelay(err, 1))
}

func TestContextualZeroPatienceIsNeutral(t *testing.T) {
	s := NewContextual(3, 100*time.Millisecond,
		func() UserContext { return UserContext{} },
		Condition{Kind: errors.KindNetworkConnection, Check: CheckAlways},
	)
	err := errors.New(errors.KindNetworkConnection, "refused", nil)

	assert.Equal(t, 200*time.Millisecond, s.RetryDelay(err, 2))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "guest", RoleGuest.String())
	assert.Equal(t, "player", RolePlayer.String())
	assert.Equal(t, "moderator", RoleModerator.String())
	assert.Equal(t, "admin", RoleAdmin.String())
}

/**
 * Error Handling Results
 *
 * The terminal outcome of one error resolution, plus the user-facing
 * message composition the presentation layer consumes. The framework never
 * renders UI; it only produces the message and required action.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-13
 */

package recovery

import (
	"github.com/roshni-games/resilience/internal/errors"
)

// Action names the user action a one-shot strategy requires before the
// operation can succeed.
type Action string

const (
	ActionNone            Action = ""
	ActionReauthenticate  Action = "reauthenticate"
	ActionGrantPermission Action = "grant_permission"
	ActionFreeStorage     Action = "free_storage"
	ActionCheckConnection Action = "check_connection"
	ActionRetryManually   Action = "retry_manually"
)

// Result is the outcome of handling one error.
type Result struct {
	// Success reports whether the operation ultimately succeeded
	Success bool

	// StrategyUsed names the strategy that handled the error; empty when
	// no registered strategy applied
	StrategyUsed string

	// Attempts is the number of operation invocations made
	Attempts int

	// FinalErr is the classified error that remained after handling
	FinalErr *errors.AppError

	// RequiredAction is set by user-intervention results
	RequiredAction Action

	// UserMessage is a human-readable message for the presentation layer
	UserMessage string
}

// Severity returns the severity the presentation layer should use; low when
// the operation recovered.
func (r *Result) Severity() errors.Severity {
	if r.Success || r.FinalErr == nil {
		return errors.SeverityLow
	}
	return r.FinalErr.Severity
}

// userMessage composes the presentation-layer message for a failed
// resolution of err.
func userMessage(err *errors.AppError) string {
	switch err.Kind.Class() {
	case errors.ClassNetwork:
		if err.Kind == errors.KindNetworkAuth {
			return "Please sign in again to continue."
		}
		if err.Kind == errors.KindNetworkRateLimited {
			return "Too many requests right now. Please wait a moment."
		}
		return "Connection problem. Check your network and try again."
	case errors.ClassGameplay:
		switch err.Kind {
		case errors.KindGameplayInvalidMove:
			return "That move isn't allowed."
		case errors.KindGameplaySaveFailed:
			return "Your progress could not be saved."
		case errors.KindGameplayLoadFailed:
			return "Your saved game could not be loaded."
		default:
			return "Something went wrong with the game state."
		}
	case errors.ClassPermission:
		return "A required permission is missing. Update it in settings."
	case errors.ClassValidation:
		return "The provided input is invalid."
	case errors.ClassSystem:
		if err.Kind == errors.KindSystemStorageFull {
			return "Device storage is full. Free up space and try again."
		}
		return "The device is low on resources. Close other apps and retry."
	case errors.ClassCancelled:
		return "The operation was cancelled."
	default:
		return "Something went wrong. Please try again."
	}
}

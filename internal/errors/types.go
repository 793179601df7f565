/**
 * Error Taxonomy for the Resilience Framework
 *
 * Defines the closed set of classified error kinds, severities, and the
 * structured AppError type that every failure in the system is converted to
 * before a recovery strategy sees it.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-12
 */

package errors

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the leaf classification of an error. The set is closed: every
// failure maps to exactly one Kind, and unrecognized failures map to
// KindUnknown.
type Kind int

const (
	// KindUnknown represents an unclassified error
	KindUnknown Kind = iota

	// KindNetworkConnection represents a failed or refused connection
	KindNetworkConnection

	// KindNetworkTimeout represents a network operation that timed out
	KindNetworkTimeout

	// KindNetworkUnavailable represents an unreachable or erroring service
	KindNetworkUnavailable

	// KindNetworkAuth represents an authentication failure on a remote call
	KindNetworkAuth

	// KindNetworkRateLimited represents a rate limit or quota rejection
	KindNetworkRateLimited

	// KindGameplayInvalidMove represents a move rejected by game rules
	KindGameplayInvalidMove

	// KindGameplayInvalidState represents an inconsistent game state
	KindGameplayInvalidState

	// KindGameplaySaveFailed represents a failed game save
	KindGameplaySaveFailed

	// KindGameplayLoadFailed represents a failed game load
	KindGameplayLoadFailed

	// KindPermissionDenied represents a denied permission
	KindPermissionDenied

	// KindPermissionNotGranted represents a permission never granted
	KindPermissionNotGranted

	// KindPermissionExpired represents an expired permission or grant
	KindPermissionExpired

	// KindValidation represents invalid input or arguments
	KindValidation

	// KindSystemOutOfMemory represents memory exhaustion
	KindSystemOutOfMemory

	// KindSystemStorageFull represents exhausted local storage
	KindSystemStorageFull

	// KindCancelled represents context cancellation or deadline expiry
	KindCancelled
)

// Class groups kinds into their top-level category.
type Class int

const (
	ClassUnknown Class = iota
	ClassNetwork
	ClassGameplay
	ClassPermission
	ClassValidation
	ClassSystem
	ClassCancelled
)

// Class returns the category a kind belongs to.
func (k Kind) Class() Class {
	switch k {
	case KindNetworkConnection, KindNetworkTimeout, KindNetworkUnavailable,
		KindNetworkAuth, KindNetworkRateLimited:
		return ClassNetwork
	case KindGameplayInvalidMove, KindGameplayInvalidState,
		KindGameplaySaveFailed, KindGameplayLoadFailed:
		return ClassGameplay
	case KindPermissionDenied, KindPermissionNotGranted, KindPermissionExpired:
		return ClassPermission
	case KindValidation:
		return ClassValidation
	case KindSystemOutOfMemory, KindSystemStorageFull:
		return ClassSystem
	case KindCancelled:
		return ClassCancelled
	default:
		return ClassUnknown
	}
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindNetworkConnection:
		return "network_connection"
	case KindNetworkTimeout:
		return "network_timeout"
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindNetworkAuth:
		return "network_auth"
	case KindNetworkRateLimited:
		return "network_rate_limited"
	case KindGameplayInvalidMove:
		return "gameplay_invalid_move"
	case KindGameplayInvalidState:
		return "gameplay_invalid_state"
	case KindGameplaySaveFailed:
		return "gameplay_save_failed"
	case KindGameplayLoadFailed:
		return "gameplay_load_failed"
	case KindPermissionDenied:
		return "permission_denied"
	case KindPermissionNotGranted:
		return "permission_not_granted"
	case KindPermissionExpired:
		return "permission_expired"
	case KindValidation:
		return "validation"
	case KindSystemOutOfMemory:
		return "system_out_of_memory"
	case KindSystemStorageFull:
		return "system_storage_full"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// String returns the string representation of a Class.
func (c Class) String() string {
	switch c {
	case ClassNetwork:
		return "network"
	case ClassGameplay:
		return "gameplay"
	case ClassPermission:
		return "permission"
	case ClassValidation:
		return "validation"
	case ClassSystem:
		return "system"
	case ClassCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTransient reports whether errors of this kind are worth retrying blindly.
// Permission and validation failures are one-shot: retrying them without
// user action cannot succeed.
func (k Kind) IsTransient() bool {
	switch k {
	case KindNetworkConnection, KindNetworkTimeout, KindNetworkUnavailable,
		KindNetworkRateLimited, KindGameplaySaveFailed, KindGameplayLoadFailed:
		return true
	default:
		return false
	}
}

// Severity indicates how serious a classified error is. Consumed by the
// external presentation layer to pick toast vs dialog vs silent log.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of a Severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// DefaultSeverity returns the severity assigned to a kind when the caller
// does not override it.
func DefaultSeverity(k Kind) Severity {
	switch k {
	case KindSystemOutOfMemory:
		return SeverityCritical
	case KindSystemStorageFull, KindGameplaySaveFailed, KindNetworkAuth:
		return SeverityHigh
	case KindGameplayInvalidMove, KindValidation, KindCancelled:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// AppError is a classified failure. It is immutable once handed to the
// recovery pipeline; the With* builders are for use at construction time
// only.
type AppError struct {
	// ID uniquely identifies this error occurrence within the process
	ID string

	// Kind is the leaf classification
	Kind Kind

	// Severity of the occurrence
	Severity Severity

	// Message is a short human-oriented description
	Message string

	// Err is the underlying cause, if any
	Err error

	// Context describes the operation during which the error occurred
	Context *Context

	// Timestamp when the error occurred
	Timestamp time.Time
}

// New creates a classified AppError with a fresh ID and the kind's default
// severity.
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{
		ID:        uuid.NewString(),
		Kind:      kind,
		Severity:  DefaultSeverity(kind),
		Message:   message,
		Err:       cause,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error's kind is transient.
func (e *AppError) IsTransient() bool {
	return e.Kind.IsTransient()
}

// WithSeverity overrides the default severity.
func (e *AppError) WithSeverity(s Severity) *AppError {
	e.Severity = s
	return e
}

// WithContext attaches the operation context.
func (e *AppError) WithContext(ctx *Context) *AppError {
	e.Context = ctx
	return e
}

/**
 * Error Wrapping Utilities
 *
 * Convenience helpers for wrapping and inspecting classified errors.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-12
 */

package errors

import (
	stderrors "errors"
	"fmt"
)

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// As extracts an *AppError from err's chain.
func As(err error, target **AppError) bool {
	return stderrors.As(err, target)
}

// IsTransient reports whether err classifies as a transient failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.IsTransient()
	}
	return KindOf(err).IsTransient()
}

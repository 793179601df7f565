/**
 * Error Classification
 *
 * Maps raw platform failures onto the closed Kind taxonomy via a fixed
 * table, extensible with registered classifiers. The conversion is pure:
 * classification never has side effects.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-12
 */

package errors

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Classifier inspects a raw error and reports a Kind if it recognizes it.
type Classifier func(err error) (Kind, bool)

var (
	classifierMu sync.RWMutex
	classifiers  []Classifier
)

// RegisterClassifier adds a custom classifier. Registered classifiers run
// before the builtin table, in registration order.
func RegisterClassifier(c Classifier) {
	classifierMu.Lock()
	defer classifierMu.Unlock()
	classifiers = append(classifiers, c)
}

// Classify converts a raw error into an AppError. Already-classified errors
// pass through unchanged (the original context is kept if ctx is nil).
func Classify(err error, ctx *Context) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if ctx != nil && appErr.Context == nil {
			appErr.Context = ctx
		}
		return appErr
	}

	kind := KindOf(err)
	out := New(kind, err.Error(), err)
	out.Context = ctx
	return out
}

// KindOf determines the Kind for a raw error without wrapping it.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	classifierMu.RLock()
	registered := classifiers
	classifierMu.RUnlock()

	for _, c := range registered {
		if kind, ok := c(err); ok {
			return kind
		}
	}

	if kind, ok := classifyBuiltin(err); ok {
		return kind
	}
	return KindUnknown
}

// classifyBuiltin is the fixed classification table.
func classifyBuiltin(err error) (Kind, bool) {
	// Context cancellation and deadlines
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return KindCancelled, true
	}

	// Google API and OAuth failures
	if kind, ok := classifyGoogleAPI(err); ok {
		return kind, true
	}

	// OS-level permission, storage and memory conditions
	if stderrors.Is(err, os.ErrPermission) || stderrors.Is(err, syscall.EACCES) ||
		stderrors.Is(err, syscall.EPERM) {
		return KindPermissionDenied, true
	}
	if stderrors.Is(err, syscall.ENOSPC) {
		return KindSystemStorageFull, true
	}
	if stderrors.Is(err, syscall.ENOMEM) {
		return KindSystemOutOfMemory, true
	}

	// Network errors
	if stderrors.Is(err, syscall.ECONNREFUSED) || stderrors.Is(err, syscall.ECONNRESET) ||
		stderrors.Is(err, syscall.EPIPE) {
		return KindNetworkConnection, true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindNetworkTimeout, true
		}
		return KindNetworkConnection, true
	}

	// Last resort: message matching, same set the Drive client retried on
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "out of memory"):
		return KindSystemOutOfMemory, true
	case strings.Contains(msg, "no space left"):
		return KindSystemStorageFull, true
	case strings.Contains(msg, "permission denied"):
		return KindPermissionDenied, true
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return KindNetworkTimeout, true
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"):
		return KindNetworkConnection, true
	}

	return KindUnknown, false
}

// classifyGoogleAPI maps googleapi and oauth2 failures onto the taxonomy.
// Auth itself is out of scope here; only the failure classification is.
func classifyGoogleAPI(err error) (Kind, bool) {
	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) {
		return KindNetworkAuth, true
	}

	var apiErr *googleapi.Error
	if !stderrors.As(err, &apiErr) {
		return KindUnknown, false
	}

	switch apiErr.Code {
	case 401:
		return KindNetworkAuth, true
	case 403:
		for _, e := range apiErr.Errors {
			if e.Reason == "userRateLimitExceeded" || e.Reason == "rateLimitExceeded" {
				return KindNetworkRateLimited, true
			}
		}
		return KindPermissionDenied, true
	case 408:
		return KindNetworkTimeout, true
	case 429:
		return KindNetworkRateLimited, true
	case 500, 502, 503, 504:
		return KindNetworkUnavailable, true
	default:
		return KindUnknown, false
	}
}

/**
 * Error Handling Orchestrator
 *
 * Owns the ordered strategy registry, classifies raw failures, selects the
 * first applicable strategy, and re-executes the failing operation under
 * that strategy's policy. Emits one event per handled error to the
 * observability stream.
 *
 * Selection order is registration order: first applicable strategy wins,
 * which makes priority explicit and deterministic. Register the adaptive
 * catch-all last.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-13
 */

package recovery

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/roshni-games/resilience/internal/errors"
	"github.com/roshni-games/resilience/internal/events"
)

// Logger is the narrow logging interface the orchestrator depends on.
type Logger interface {
	Error(err error, msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
}

// nopLogger keeps the handler nil-safe when no logger is supplied.
type nopLogger struct{}

func (nopLogger) Error(error, string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})         {}
func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Debug(string, ...interface{})        {}

// Operation is a unit of work the orchestrator can re-invoke.
type Operation func(ctx context.Context) (interface{}, error)

// namedGate pairs a Gate with the strategy it belongs to, for attribution
// in results.
type namedGate struct {
	gate Gate
	name string
}

// Handler orchestrates error handling. Construct one explicitly and thread
// it through call sites; there is deliberately no package-level instance.
type Handler struct {
	mu         sync.RWMutex
	strategies []Strategy
	gates      []namedGate
	adaptive   *AdaptiveStrategy

	bus *events.Bus
	log Logger

	// sleep waits without blocking the runtime; overridable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewHandler creates an orchestrator publishing to bus. Both arguments may
// be nil.
func NewHandler(log Logger, bus *events.Bus) *Handler {
	if log == nil {
		log = nopLogger{}
	}
	return &Handler{
		bus:   bus,
		log:   log,
		sleep: sleepWithContext,
	}
}

// sleepWithContext is a timer-based wait that aborts on cancellation.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Register appends a strategy to the registry. The registration order is
// the selection order.
func (h *Handler) Register(s Strategy) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.strategies = append(h.strategies, s)
	if g, ok := s.(Gate); ok {
		h.gates = append(h.gates, namedGate{gate: g, name: s.Name()})
	}
	if a, ok := s.(*AdaptiveStrategy); ok {
		h.adaptive = a
	}

	h.log.Debug("Recovery strategy registered",
		"strategy", s.Name(),
		"max_attempts", s.MaxAttempts(),
	)
}

// Events returns a subscription to the error event stream, one event per
// handled error. Returns nil when the handler was built without a bus.
func (h *Handler) Events() <-chan events.ErrorEvent {
	if h.bus == nil {
		return nil
	}
	return h.bus.Subscribe("handler_events")
}

// Registered returns the strategies in selection order.
func (h *Handler) Registered() []Strategy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Strategy(nil), h.strategies...)
}

// match returns the first strategy that handles err, or nil.
func (h *Handler) match(err *errors.AppError) Strategy {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.strategies {
		if s.CanHandle(err) {
			return s
		}
	}
	return nil
}

// HandleError resolves an already-classified error without an operation to
// re-invoke. One-shot strategies resolve fully; retry-capable strategies
// can only report which strategy would apply. Always emits one event.
func (h *Handler) HandleError(ctx context.Context, appErr *errors.AppError, ectx *errors.Context) *Result {
	if appErr == nil {
		return &Result{Success: true}
	}
	if appErr.Context == nil {
		appErr.Context = ectx
	}

	strategy := h.match(appErr)
	if strategy == nil {
		result := h.unhandled(appErr)
		h.emit(appErr, ectx, result)
		return result
	}

	var result *Result
	if resolver, ok := strategy.(Resolver); ok {
		_, result = resolver.Resolve(ctx, appErr)
	} else {
		result = &Result{
			Success:      false,
			StrategyUsed: strategy.Name(),
			FinalErr:     appErr,
			UserMessage:  userMessage(appErr),
		}
	}

	h.feedAdaptive(appErr, result.Success, 0)
	h.emit(appErr, ectx, result)
	return result
}

// ExecuteWithRecovery runs op, and on failure classifies the error and
// drives the matched strategy's policy: re-invoking op after each computed
// delay until success, attempts exhausted, circuit rejection, or
// cancellation. The retry loop is sequential within one call; delays never
// block the runtime.
func (h *Handler) ExecuteWithRecovery(ctx context.Context, operationName, component string,
	ectx *errors.Context, op Operation) (interface{}, *Result) {

	if ectx == nil {
		ectx = errors.NewContext(operationName, component)
	}

	if err := ctx.Err(); err != nil {
		return nil, h.cancelled(ectx, err, 0)
	}

	// A tripped circuit rejects the call before the operation runs.
	if name, rejection := h.preCall(); rejection != nil {
		appErr := h.wrapRejection(rejection, ectx)
		result := &Result{
			Success:      false,
			StrategyUsed: name,
			Attempts:     0,
			FinalErr:     appErr,
			UserMessage:  userMessage(appErr),
		}
		h.emit(appErr, ectx, result)
		return nil, result
	}

	value, opErr := op(ctx)
	if opErr == nil {
		h.recordOnGates(nil, true)
		return value, &Result{Success: true, Attempts: 1}
	}

	appErr := errors.Classify(opErr, ectx)
	h.recordOnGates(appErr, false)
	if appErr.Kind == errors.KindCancelled {
		return nil, h.cancelledFrom(appErr, ectx, 1)
	}

	h.log.Debug("Operation failed, selecting recovery strategy",
		"operation", operationName,
		"component", component,
		"error_kind", appErr.Kind.String(),
	)

	strategy := h.match(appErr)
	if strategy == nil {
		result := h.unhandled(appErr)
		result.Attempts = 1
		h.emit(appErr, ectx, result)
		return nil, result
	}

	gate, _ := strategy.(Gate)

	if resolver, ok := strategy.(Resolver); ok {
		resolved, result := resolver.Resolve(ctx, appErr)
		h.feedAdaptive(appErr, result.Success, 0)
		h.emit(appErr, ectx, result)
		return resolved, result
	}

	return h.retryLoop(ctx, ectx, op, strategy, gate, appErr)
}

// retryLoop drives the re-invocation policy for a retry-capable strategy.
func (h *Handler) retryLoop(ctx context.Context, ectx *errors.Context, op Operation,
	strategy Strategy, gate Gate, appErr *errors.AppError) (interface{}, *Result) {

	var value interface{}
	attempts := 1
	maxAttempts := strategy.MaxAttempts()

	for attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			result := h.cancelled(ectx, err, attempts)
			return nil, result
		}

		if gate != nil {
			if rejection := gate.Allow(appErr); rejection != nil {
				wrapped := h.wrapRejection(rejection, ectx)
				result := &Result{
					Success:      false,
					StrategyUsed: strategy.Name(),
					Attempts:     attempts,
					FinalErr:     wrapped,
					UserMessage:  userMessage(wrapped),
				}
				h.emit(wrapped, ectx, result)
				return nil, result
			}
		}

		delay := strategy.RetryDelay(appErr, attempts)
		h.log.Debug("Waiting before retry",
			"strategy", strategy.Name(),
			"attempt", attempts,
			"delay", delay,
		)
		if err := h.sleep(ctx, delay); err != nil {
			return nil, h.cancelled(ectx, err, attempts)
		}

		attempts++
		var opErr error
		value, opErr = op(ctx)
		success := opErr == nil

		if success {
			h.recordOnGates(nil, true)
			h.feedAdaptive(appErr, true, delay)

			result := &Result{
				Success:      true,
				StrategyUsed: strategy.Name(),
				Attempts:     attempts,
			}
			h.log.Info("Operation recovered",
				"strategy", strategy.Name(),
				"attempts", attempts,
			)
			h.emit(appErr, ectx, result)
			return value, result
		}

		next := errors.Classify(opErr, ectx)
		h.recordOnGates(next, false)
		h.feedAdaptive(appErr, false, delay)

		if next.Kind == errors.KindCancelled {
			return nil, h.cancelledFrom(next, ectx, attempts)
		}
		appErr = next
	}

	result := &Result{
		Success:      false,
		StrategyUsed: strategy.Name(),
		Attempts:     attempts,
		FinalErr:     appErr,
		UserMessage:  userMessage(appErr),
	}
	h.log.Warn("Recovery attempts exhausted",
		"strategy", strategy.Name(),
		"attempts", attempts,
		"error_kind", appErr.Kind.String(),
	)
	h.emit(appErr, ectx, result)
	return nil, result
}

// preCall runs the pre-invocation gate checks.
func (h *Handler) preCall() (string, error) {
	h.mu.RLock()
	gates := h.gates
	h.mu.RUnlock()

	for _, ng := range gates {
		if err := ng.gate.Allow(nil); err != nil {
			return ng.name, err
		}
	}
	return "", nil
}

// recordOnGates reports an invocation outcome to every gate, so breakers
// count failures and resolve half-open trials regardless of which strategy
// ends up driving recovery.
func (h *Handler) recordOnGates(appErr *errors.AppError, success bool) {
	h.mu.RLock()
	gates := h.gates
	h.mu.RUnlock()

	for _, ng := range gates {
		ng.gate.RecordResult(appErr, success)
	}
}

// wrapRejection classifies a circuit rejection, preserving the guarded kind
// so presentation stays accurate.
func (h *Handler) wrapRejection(rejection error, ectx *errors.Context) *errors.AppError {
	kind := errors.KindNetworkUnavailable
	var coe *CircuitOpenError
	if stderrors.As(rejection, &coe) {
		kind = coe.Kind
	}
	return errors.New(kind, "rejected by open circuit", rejection).WithContext(ectx)
}

// unhandled is the terminal result when no registered strategy applies.
func (h *Handler) unhandled(appErr *errors.AppError) *Result {
	h.log.Warn("No recovery strategy for error",
		"error_kind", appErr.Kind.String(),
		"severity", appErr.Severity.String(),
	)
	return &Result{
		Success:     false,
		FinalErr:    appErr,
		UserMessage: userMessage(appErr),
	}
}

// cancelled builds the result for an observed cancellation signal. No
// further operation invocations happen after it.
func (h *Handler) cancelled(ectx *errors.Context, cause error, attempts int) *Result {
	appErr := errors.New(errors.KindCancelled, "operation cancelled", cause).WithContext(ectx)
	return h.cancelledFrom(appErr, ectx, attempts)
}

func (h *Handler) cancelledFrom(appErr *errors.AppError, ectx *errors.Context, attempts int) *Result {
	result := &Result{
		Success:     false,
		Attempts:    attempts,
		FinalErr:    appErr,
		UserMessage: userMessage(appErr),
	}
	h.emit(appErr, ectx, result)
	return result
}

// feedAdaptive routes an outcome into the adaptive strategy's statistics,
// when one is registered.
func (h *Handler) feedAdaptive(appErr *errors.AppError, success bool, delay time.Duration) {
	h.mu.RLock()
	adaptive := h.adaptive
	h.mu.RUnlock()

	if adaptive != nil {
		adaptive.UpdatePerformance(appErr, success, delay)
	}
}

// emit publishes one event to the stream and logs the outcome. Never
// blocks: the bus drops the oldest buffered event under pressure.
func (h *Handler) emit(appErr *errors.AppError, ectx *errors.Context, result *Result) {
	h.log.Error(appErr, "Error handled",
		"error_id", appErr.ID,
		"error_kind", appErr.Kind.String(),
		"severity", appErr.Severity.String(),
		"strategy", result.StrategyUsed,
		"attempts", result.Attempts,
		"recovered", result.Success,
	)

	if h.bus == nil {
		return
	}
	h.bus.Publish(events.ErrorEvent{
		Error:   appErr,
		Context: ectx,
		Outcome: &events.Outcome{
			Success:     result.Success,
			Strategy:    result.StrategyUsed,
			Attempts:    result.Attempts,
			UserMessage: result.UserMessage,
		},
	})
}

// Execute is the typed wrapper over ExecuteWithRecovery.
func Execute[T any](ctx context.Context, h *Handler, operationName, component string,
	ectx *errors.Context, op func(ctx context.Context) (T, error)) (T, *Result) {

	value, result := h.ExecuteWithRecovery(ctx, operationName, component, ectx,
		func(ctx context.Context) (interface{}, error) {
			return op(ctx)
		})

	typed, _ := value.(T)
	return typed, result
}

/**
 * Error Event Stream
 *
 * Append-only stream of error handling events for external observers
 * (analytics, metrics, logging). The stream is a bounded, non-blocking
 * sink: a slow subscriber loses the oldest buffered events, never the
 * error path's throughput.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package events

import (
	"sync"
	"time"

	"github.com/roshni-games/resilience/internal/errors"
)

// Outcome summarizes how an error was handled.
type Outcome struct {
	// Success reports whether the operation ultimately succeeded
	Success bool

	// Strategy is the name of the strategy that handled the error
	Strategy string

	// Attempts is the number of operation invocations made
	Attempts int

	// UserMessage is the message produced for the presentation layer
	UserMessage string
}

// ErrorEvent is one entry in the stream.
type ErrorEvent struct {
	// Error is the classified failure
	Error *errors.AppError

	// Context is the operation context, when known
	Context *errors.Context

	// Outcome is the handling result, nil while handling is in flight
	Outcome *Outcome

	// Timestamp when the event was published
	Timestamp time.Time
}

// Bus distributes error events to named subscribers. Each subscriber gets
// its own bounded channel; publishing never blocks.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]chan ErrorEvent
	buffer int
	closed bool
	wg     sync.WaitGroup
}

// NewBus creates an event bus with the given per-subscriber buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{
		subs:   make(map[string]chan ErrorEvent),
		buffer: buffer,
	}
}

// Subscribe creates (or returns) the named subscriber channel.
func (b *Bus) Subscribe(name string) <-chan ErrorEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[name]; ok {
		return ch
	}

	ch := make(chan ErrorEvent, b.buffer)
	b.subs[name] = ch
	return ch
}

// SubscribeFunc runs fn for every event on a dedicated subscription. The
// handler runs on its own goroutine; a panic in fn is contained and the
// subscription keeps running.
func (b *Bus) SubscribeFunc(name string, fn func(ErrorEvent)) {
	ch := b.Subscribe(name)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for ev := range ch {
			callHandler(fn, ev)
		}
	}()
}

// callHandler invokes fn, containing panics.
func callHandler(fn func(ErrorEvent), ev ErrorEvent) {
	defer func() {
		_ = recover()
	}()
	fn(ev)
}

// Unsubscribe removes and closes the named subscription.
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[name]; ok {
		close(ch)
		delete(b.subs, name)
	}
}

// Publish delivers an event to every subscriber. When a subscriber's buffer
// is full, the oldest buffered event is dropped to make room; error handling
// is never throttled by observability.
func (b *Bus) Publish(ev ErrorEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Full: evict the oldest entry, then try once more. A racing
			// consumer may have drained the channel in between, in which
			// case the second send succeeds anyway.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Close shuts down the bus and all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for name, ch := range b.subs {
		close(ch)
		delete(b.subs, name)
	}
	b.mu.Unlock()

	b.wg.Wait()
}

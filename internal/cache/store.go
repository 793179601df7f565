/**
 * Cache Store Interface and In-Memory Backend
 *
 * Backing storage for the cache and offline recovery strategies. Entries
 * carry their storage time so strategies can enforce a maximum age.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-15
 */

package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is a stored cache value.
type Entry struct {
	Key      string
	Value    []byte
	StoredAt time.Time
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.StoredAt)
}

// Store persists cache entries for the recovery strategies.
type Store interface {
	// Get returns the entry for key, reporting whether it exists.
	Get(ctx context.Context, key string) (*Entry, bool, error)

	// Put stores a value under key, stamping the storage time.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the entry for key.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Memory is a mutex-guarded in-memory store, the default backend.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	// now is the clock, overridable in tests
	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Get returns the entry for key.
func (m *Memory) Get(_ context.Context, key string) (*Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := *e
	return &cp, true, nil
}

// Put stores a value under key.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &Entry{
		Key:      key,
		Value:    append([]byte(nil), value...),
		StoredAt: m.now(),
	}
	return nil
}

// Delete removes the entry for key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

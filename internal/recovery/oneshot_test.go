/**
 * One-Shot Strategy Tests
 *
 * Unit tests for the fallback, cache, offline and user-intervention
 * strategies.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-14
 */

package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshni-games/resilience/internal/cache"
	"github.com/roshni-games/resilience/internal/errors"
)

func loadFailed() *errors.AppError {
	return errors.New(errors.KindGameplayLoadFailed, "load failed", nil).
		WithContext(errors.NewContext("load_game", "gameplay"))
}

func TestFallbackResolve(t *testing.T) {
	s := NewFallback("default_board", []byte("empty board"),
		errors.KindGameplayLoadFailed)

	err := loadFailed()
	require.True(t, s.CanHandle(err))
	assert.Equal(t, 1, s.MaxAttempts())

	value, result := s.Resolve(context.Background(), err)
	assert.Equal(t, []byte("empty board"), value)
	assert.True(t, result.Success)
	assert.Equal(t, "fallback", result.StrategyUsed)
	assert.Contains(t, result.UserMessage, "default_board")
}

func TestFallbackKindAllowlist(t *testing.T) {
	s := NewFallback("default_board", nil, errors.KindGameplayLoadFailed)
	assert.False(t, s.CanHandle(errors.New(errors.KindNetworkTimeout, "slow", nil)))
	assert.False(t, s.CanHandle(nil))
}

func TestCacheResolveHit(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	require.NoError(t, store.Put(ctx, "cache:gameplay:load_game", []byte("cached state")))

	s := NewCache(store, time.Minute, errors.KindGameplayLoadFailed)

	value, result := s.Resolve(ctx, loadFailed())
	assert.Equal(t, []byte("cached state"), value)
	assert.True(t, result.Success)
	assert.Equal(t, "cache", result.StrategyUsed)
}

func TestCacheResolveMiss(t *testing.T) {
	s := NewCache(cache.NewMemory(), time.Minute, errors.KindGameplayLoadFailed)

	err := loadFailed()
	value, result := s.Resolve(context.Background(), err)
	assert.Nil(t, value)
	assert.False(t, result.Success)
	assert.Equal(t, err, result.FinalErr)
}

func TestCacheResolveStale(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	// stored well past the freshness bound
	store.putAt("cache:gameplay:load_game", []byte("ancient"), time.Now().Add(-time.Hour))

	s := NewCache(store, time.Minute, errors.KindGameplayLoadFailed)

	value, result := s.Resolve(ctx, loadFailed())
	assert.Nil(t, value)
	assert.False(t, result.Success)
}

func TestCacheResolveNilContext(t *testing.T) {
	s := NewCache(cache.NewMemory(), time.Minute, errors.KindGameplayLoadFailed)

	// an error with no context resolves against the unknown key, missing
	err := errors.New(errors.KindGameplayLoadFailed, "load failed", nil)
	_, result := s.Resolve(context.Background(), err)
	assert.False(t, result.Success)
}

func TestOfflineResolveIgnoresAge(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	store.putAt("offline:gameplay:load_game", []byte("yesterday's save"),
		time.Now().Add(-24*time.Hour))

	s := NewOffline(store, errors.KindGameplayLoadFailed)

	value, result := s.Resolve(ctx, loadFailed())
	assert.Equal(t, []byte("yesterday's save"), value)
	assert.True(t, result.Success)
	assert.Equal(t, "offline", result.StrategyUsed)
	assert.Contains(t, result.UserMessage, "offline")
}

func TestOfflineResolveNoSnapshot(t *testing.T) {
	s := NewOffline(cache.NewMemory(), errors.KindGameplayLoadFailed)

	value, result := s.Resolve(context.Background(), loadFailed())
	assert.Nil(t, value)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.UserMessage)
}

func TestUserInterventionResolve(t *testing.T) {
	s := NewUserIntervention(ActionReauthenticate,
		"sign in again to restore the connection",
		errors.KindNetworkAuth)

	err := errors.New(errors.KindNetworkAuth, "token rejected", nil)
	require.True(t, s.CanHandle(err))

	value, result := s.Resolve(context.Background(), err)
	assert.Nil(t, value)
	assert.False(t, result.Success)
	assert.Equal(t, ActionReauthenticate, result.RequiredAction)
	assert.Equal(t, "sign in again to restore the connection", result.UserMessage)
	assert.Equal(t, err, result.FinalErr)
}

func TestResultSeverity(t *testing.T) {
	ok := &Result{Success: true}
	assert.Equal(t, errors.SeverityLow, ok.Severity())

	failed := &Result{
		Success:  false,
		FinalErr: errors.New(errors.KindSystemOutOfMemory, "oom", nil),
	}
	assert.Equal(t, errors.SeverityCritical, failed.Severity())

	empty := &Result{}
	assert.Equal(t, errors.SeverityLow, empty.Severity())
}

// fakeStore is an in-test Store whose entries can carry arbitrary storage
// times.
type fakeStore struct {
	entries map[string]*cache.Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*cache.Entry)}
}

func (f *fakeStore) putAt(key string, value []byte, at time.Time) {
	f.entries[key] = &cache.Entry{Key: key, Value: value, StoredAt: at}
}

func (f *fakeStore) Get(_ context.Context, key string) (*cache.Entry, bool, error) {
	e, ok := f.entries[key]
	return e, ok, nil
}

func (f *fakeStore) Put(_ context.Context, key string, value []byte) error {
	f.putAt(key, value, time.Now())
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

func (f *fakeStore) Close() error { return nil }

/**
 * Redis Cache Store
 *
 * Shared cache backend for deployments where multiple processes should see
 * the same cached and offline data. Entries are stored as a small JSON
 * envelope so the storage time travels with the value.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-15
 */

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis store configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL bounds entry lifetime server-side; zero means no expiry
	TTL time.Duration
}

type redisEnvelope struct {
	Value    []byte    `json:"v"`
	StoredAt time.Time `json:"at"`
}

// Redis is a go-redis backed Store.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{client: client, ttl: cfg.TTL}, nil
}

// Get returns the entry for key.
func (r *Redis) Get(ctx context.Context, key string) (*Entry, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for %q: %w", key, err)
	}

	return &Entry{Key: key, Value: env.Value, StoredAt: env.StoredAt}, true, nil
}

// Put stores a value under key.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	raw, err := json.Marshal(redisEnvelope{Value: value, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Package kv provides a durable key-value store used for the search result
// cache and search history. The contract mirrors web localStorage: string
// keys, string values, and nothing else.
// This is part of the platform layer and contains no business logic.
package kv

import (
	"context"
	"crypto/tls"
	"errors"
	"sync"

	"localist_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// Store is the minimal durable key-value contract consumed by the search
// engine. Implementations may fail; callers are expected to treat failures
// as cache misses / write no-ops.
type Store interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using the configured URL.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, errors.New("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig.InsecureSkipVerify = true
	} else if opt.TLSConfig == nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &RedisStore{client: redis.NewClient(opt)}, nil
}

// NewRedisStoreFromClient wraps an existing Redis client (used by tests).
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// GetItem returns the stored value for key.
func (s *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem stores value under key without expiry. TTL semantics live in the
// cache layer, not here.
func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// RemoveItem deletes key.
func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

var _ Store = (*RedisStore)(nil)

// MemoryStore is an in-process Store used in development when no Redis URL
// is configured, and as a test double.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// GetItem returns the stored value for key.
func (s *MemoryStore) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok, nil
}

// SetItem stores value under key.
func (s *MemoryStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// RemoveItem deletes key.
func (s *MemoryStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)

// NamespacedStore prefixes every key with a namespace, isolating one
// client session's cache and history from another's on a shared backend.
type NamespacedStore struct {
	inner  Store
	prefix string
}

// Namespaced wraps store so all keys live under "<namespace>:".
func Namespaced(store Store, namespace string) *NamespacedStore {
	return &NamespacedStore{inner: store, prefix: namespace + ":"}
}

// GetItem returns the stored value for the namespaced key.
func (s *NamespacedStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.inner.GetItem(ctx, s.prefix+key)
}

// SetItem stores value under the namespaced key.
func (s *NamespacedStore) SetItem(ctx context.Context, key, value string) error {
	return s.inner.SetItem(ctx, s.prefix+key, value)
}

// RemoveItem deletes the namespaced key.
func (s *NamespacedStore) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, s.prefix+key)
}

var _ Store = (*NamespacedStore)(nil)

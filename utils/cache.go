package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a time-boxed cache: Get only returns entries younger than their
// TTL, while GetStale also returns expired entries so callers can fall back
// to the last successful load when the upstream fetch fails. The cache is an
// optimization, never a source of truth.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	GetStale(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps entries in process memory. Expired entries are retained
// until overwritten so GetStale can serve them.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.data, true
}

func (s *MemoryStore) GetStale(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{data: data, expires: time.Now().Add(ttl)}
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// RedisStore shares the cache between instances. Each entry is written
// twice: once with the TTL for freshness checks and once without expiry
// under a stale: prefix for fallback reads.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisStore) GetStale(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, staleKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	s.client.Set(ctx, key, data, ttl)
	s.client.Set(ctx, staleKey(key), data, 0)
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	s.client.Del(ctx, key, staleKey(key))
}

func staleKey(key string) string {
	return "stale:" + key
}

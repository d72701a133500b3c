package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

type MemoryUsageStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{counts: make(map[string]int)}
}

func (s *MemoryUsageStore) Usage(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID], nil
}

func (s *MemoryUsageStore) Increment(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[userID]++
	return s.counts[userID], nil
}

// Decrement never goes below zero.
func (s *MemoryUsageStore) Decrement(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[userID] > 0 {
		s.counts[userID]--
	}
	return s.counts[userID], nil
}

// RedisUsageStore keeps counters under "<prefix>:usage:<user id>".
type RedisUsageStore struct {
	client *redis.Client
	prefix string
}

func NewRedisUsageStore(redisURL, prefix string) (*RedisUsageStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisUsageStoreFromClient(redis.NewClient(opts), prefix), nil
}

func NewRedisUsageStoreFromClient(client *redis.Client, prefix string) *RedisUsageStore {
	return &RedisUsageStore{client: client, prefix: prefix}
}

func (s *RedisUsageStore) key(userID string) string {
	return s.prefix + ":usage:" + userID
}

func (s *RedisUsageStore) Usage(ctx context.Context, userID string) (int, error) {
	n, err := s.client.Get(ctx, s.key(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get usage: %w", err)
	}
	return n, nil
}

func (s *RedisUsageStore) Increment(ctx context.Context, userID string) (int, error) {
	n, err := s.client.Incr(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return int(n), nil
}

func (s *RedisUsageStore) Decrement(ctx context.Context, userID string) (int, error) {
	n, err := s.client.Decr(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to decrement usage: %w", err)
	}
	return int(n), nil
}

func (s *RedisUsageStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisUsageStore) Close() error {
	return s.client.Close()
}

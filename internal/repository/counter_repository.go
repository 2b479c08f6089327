package repository

import (
	"context"
	"sync"
	"time"

	redis_v9 "github.com/redis/go-redis/v9"
)

// CounterStore is a keyed counter with a TTL window, used by the auth rate
// limiter. Backed by Redis when configured so the counts are shared across
// instances, with a per-process fallback otherwise.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounterStore struct {
	client *redis_v9.Client
}

func NewRedisCounterStore(client *redis_v9.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First hit in this window starts the TTL.
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

type memoryCounter struct {
	count    int64
	expireAt time.Time
}

// MemoryCounterStore keeps counters in process memory. Not shared across
// instances; a fallback for deployments without Redis.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

func (s *MemoryCounterStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || now.After(c.expireAt) {
		c = &memoryCounter{expireAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++

	// Opportunistic sweep keeps the map from growing without bound.
	if len(s.counters) > 10000 {
		for k, v := range s.counters {
			if now.After(v.expireAt) {
				delete(s.counters, k)
			}
		}
	}
	return c.count, nil
}

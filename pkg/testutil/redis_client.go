package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient keeps keys in memory. The XxxFunc fields override the
// in-memory behavior when set.
type MockRedisClient struct {
	SetNXFunc      func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DelIfEqualFunc func(ctx context.Context, key, value string) (bool, error)

	mu   sync.Mutex
	data map[string]string
}

func (m *MockRedisClient) store() map[string]string {
	if m.data == nil {
		m.data = map[string]string{}
	}

	return m.data
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.store()[key]
	return ok, nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.store(), key)
	}

	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.store()[key]
	if !ok {
		return "", redis.Nil
	}

	return v, nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store()[key] = value
	return nil
}

func (m *MockRedisClient) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store()[key]; ok {
		return false, nil
	}

	m.store()[key] = value
	return true, nil
}

func (m *MockRedisClient) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	if m.DelIfEqualFunc != nil {
		return m.DelIfEqualFunc(ctx, key, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store()[key] != value {
		return false, nil
	}

	delete(m.store(), key)
	return true, nil
}

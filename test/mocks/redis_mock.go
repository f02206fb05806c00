package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient serves the storage.RedisClient subset from memory.
// Expired keys read as redis.Nil, the same as a real server.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]redisEntry
	now  func() time.Time

	// Error injection
	SetError  error
	GetError  error
	DelError  error
	PingError error
}

type redisEntry struct {
	value     string
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]redisEntry),
		now:  time.Now,
	}
}

// WithClock replaces the clock used for expiry checks.
func (m *MockRedisClient) WithClock(now func() time.Time) *MockRedisClient {
	m.now = now
	return m
}

func (m *MockRedisClient) live(key string) (redisEntry, bool) {
	e, ok := m.data[key]
	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		return redisEntry{}, false
	}
	return e, true
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	e := redisEntry{value: fmt.Sprint(value)}
	if expiration > 0 {
		e.expiresAt = m.now().Add(expiration)
	}
	m.data[key] = e
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}

	e, ok := m.live(key)
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(e.value)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}

	var deleted int64
	for _, key := range keys {
		if _, ok := m.live(key); ok {
			deleted++
		}
		delete(m.data, key)
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// HasKey reports whether key holds an unexpired value.
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.live(key)
	return ok
}

// ExpiresAt returns when key expires; zero means never.
func (m *MockRedisClient) ExpiresAt(key string) time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key].expiresAt
}

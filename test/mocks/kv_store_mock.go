// Package mocks provides hand-written implementations of the core ports for
// tests. Each mock records its calls and lets a test inject errors.
package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// MockKeyValueStore implements ports.KeyValueStore in memory.
type MockKeyValueStore struct {
	mu   sync.RWMutex
	data map[string]string

	// Call tracking
	GetCalls    []string
	SetCalls    []string
	RemoveCalls [][]string

	// Error injection
	GetError    error
	SetError    error
	RemoveError error
	PingError   error
}

var _ ports.KeyValueStore = (*MockKeyValueStore)(nil)

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

// Seed sets a key directly, for test setup.
func (m *MockKeyValueStore) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Value reads a key directly, for test assertions.
func (m *MockKeyValueStore) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MockKeyValueStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetError != nil {
		return "", false, m.GetError
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, key)
	if m.SetError != nil {
		return m.SetError
	}
	m.data[key] = value
	return nil
}

func (m *MockKeyValueStore) Remove(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RemoveCalls = append(m.RemoveCalls, keys)
	if m.RemoveError != nil {
		return m.RemoveError
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MockKeyValueStore) Ping(ctx context.Context) error {
	return m.PingError
}

// SetRemoveError swaps the injected Remove error under the lock.
func (m *MockKeyValueStore) SetRemoveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveError = err
}

func (m *MockKeyValueStore) RemoveCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.RemoveCalls)
}

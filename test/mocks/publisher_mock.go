package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// MockStatusEventPublisher implements ports.StatusEventPublisher for testing.
// It lets the machines be tested without a real RabbitMQ connection.
type MockStatusEventPublisher struct {
	mu sync.RWMutex

	// Track published events for verification
	PublishedEvents []ports.StatusChangedEvent

	// Error injection for testing error scenarios
	PublishError error

	PublishCallCount int
}

var _ ports.StatusEventPublisher = (*MockStatusEventPublisher)(nil)

func NewMockStatusEventPublisher() *MockStatusEventPublisher {
	return &MockStatusEventPublisher{
		PublishedEvents: make([]ports.StatusChangedEvent, 0),
	}
}

func (m *MockStatusEventPublisher) PublishStatusChanged(ctx context.Context, evt ports.StatusChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of all events that were published.
func (m *MockStatusEventPublisher) GetPublishedEvents() []ports.StatusChangedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.StatusChangedEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockStatusEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]ports.StatusChangedEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}

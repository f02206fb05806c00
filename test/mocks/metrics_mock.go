package mocks

import (
	"sync"

	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// MockMetricsRecorder counts every recorded metric by label.
type MockMetricsRecorder struct {
	mu sync.Mutex

	Logins      map[string]int
	Logouts     int
	Transitions map[string]int
	Denials     map[string]int
}

var _ ports.MetricsRecorder = (*MockMetricsRecorder)(nil)

func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{
		Logins:      make(map[string]int),
		Transitions: make(map[string]int),
		Denials:     make(map[string]int),
	}
}

func (m *MockMetricsRecorder) LoginAttempt(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logins[result]++
}

func (m *MockMetricsRecorder) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logouts++
}

// Transition counts under "machine/outcome".
func (m *MockMetricsRecorder) Transition(machine, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions[machine+"/"+outcome]++
}

func (m *MockMetricsRecorder) AuthorizationDenied(predicate string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Denials[predicate]++
}

func (m *MockMetricsRecorder) TransitionCount(machine, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Transitions[machine+"/"+outcome]
}

func (m *MockMetricsRecorder) LogoutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Logouts
}

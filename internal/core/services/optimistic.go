package services

import (
	"sync"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

// Clearable is implemented by anything holding role-scoped state that must
// not survive a logout.
type Clearable interface {
	Clear()
}

type pendingEntry[T any] struct {
	prev    T
	hadPrev bool
	value   T
}

// localState keeps the last confirmed copy of each entity plus at most one
// tentative copy per entity while a remote update is outstanding.
type localState[T any] struct {
	mu        sync.Mutex
	epoch     uint64
	confirmed map[string]T
	pending   map[string]pendingEntry[T]
}

func newLocalState[T any]() *localState[T] {
	return &localState[T]{
		confirmed: make(map[string]T),
		pending:   make(map[string]pendingEntry[T]),
	}
}

// begin records value as tentative. It fails if id already has a pending
// change. The returned epoch must be handed back to commit or rollback.
func (s *localState[T]) begin(id string, value T) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[id]; busy {
		return 0, domain.ErrTransitionInFlight
	}
	prev, ok := s.confirmed[id]
	s.pending[id] = pendingEntry[T]{prev: prev, hadPrev: ok, value: value}
	return s.epoch, nil
}

// commit is a no-op when the state was cleared after begin.
func (s *localState[T]) commit(id string, value T, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}
	delete(s.pending, id)
	s.confirmed[id] = value
}

// rollback drops the tentative copy and leaves the last confirmed one in place.
func (s *localState[T]) rollback(id string, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}
	entry, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	if entry.hadPrev {
		s.confirmed[id] = entry.prev
	} else {
		delete(s.confirmed, id)
	}
}

// put stores a copy fetched from the remote collaborator. A pending change
// keeps precedence until it resolves.
func (s *localState[T]) put(id string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed[id] = value
}

func (s *localState[T]) get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.pending[id]; ok {
		return entry.value, true
	}
	v, ok := s.confirmed[id]
	return v, ok
}

func (s *localState[T]) isPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

func (s *localState[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.confirmed = make(map[string]T)
	s.pending = make(map[string]pendingEntry[T])
}

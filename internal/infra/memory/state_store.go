package memory

import (
	"context"
	"sync"

	"quiz-runner/internal/domain"
)

// StateStore is an in-memory implementation of app.StateStore. Records do
// not survive a restart; it backs tests and throwaway runs.
type StateStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewStateStore() *StateStore {
	return &StateStore{values: make(map[string][]byte)}
}

func (s *StateStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *StateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *StateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

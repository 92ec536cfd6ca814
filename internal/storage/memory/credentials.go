package memory

import (
	"context"
	"sync"
)

type CredentialStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		values: make(map[string]string),
	}
}

func (s *CredentialStore) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[name]
	return v, ok, nil
}

func (s *CredentialStore) Set(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = value
	return nil
}

func (s *CredentialStore) Clear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, name)
	return nil
}

// Len reports how many keys are held.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}

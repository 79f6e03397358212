package session

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store for unit and dev testing.
type MemStore struct {
	mutex sync.Mutex
	token string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get(_ context.Context) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.token, nil
}

func (s *MemStore) Set(_ context.Context, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = token
	return nil
}

func (s *MemStore) Clear(_ context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = ""
	return nil
}

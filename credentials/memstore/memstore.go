package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-store-admin/credentials"
)

var _ credentials.Store = (*Store)(nil)

// Store keeps tokens in process memory. Useful for tests and short lived tools.
type Store struct {
	values map[string]string
	lock   sync.RWMutex
}

func New() *Store {
	return &Store{
		values: make(map[string]string),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.values, key)
	return nil
}

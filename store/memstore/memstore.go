// Package memstore provides an in-memory CredentialStore for tests and
// examples. Documents are copied on the way in and out, so callers cannot
// mutate stored state through retained references.
package memstore

import (
	"context"
	"sync"

	authgate "github.com/kesparza-dev/authgate"
)

// Store is a map-backed credential store keyed by email. Safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	users map[string]authgate.UserRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]authgate.UserRecord),
	}
}

func (s *Store) Get(ctx context.Context, email string) (authgate.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[email]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return record, nil
}

func (s *Store) Create(ctx context.Context, record authgate.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[record.Email]; exists {
		return authgate.ErrAccountExists
	}
	s.users[record.Email] = record
	return nil
}

func (s *Store) Update(ctx context.Context, record authgate.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[record.Email]; !exists {
		return authgate.ErrUserNotFound
	}
	s.users[record.Email] = record
	return nil
}

// Len reports the number of stored accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStateStore is an in-process StateStore. OAuth states are short-lived
// so process-local storage is acceptable for single-instance deployments;
// multi-instance deployments should use a shared store behind the same
// interface.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

// NewMemoryStateStore creates an in-memory OAuth state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time)}
}

// Store saves a state value until expiresAt. Expired entries are pruned on
// each write to bound memory growth.
func (s *MemoryStateStore) Store(ctx context.Context, state string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}

	s.states[state] = expiresAt
	return nil
}

// Consume atomically validates and removes a state value.
func (s *MemoryStateStore) Consume(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(s.states, state)

	if time.Now().After(expiresAt) {
		return ErrStateNotFound
	}
	return nil
}

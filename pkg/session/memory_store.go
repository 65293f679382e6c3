package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-process storage. It is the default
// store and also serves as the degradation fallback for the distributed one.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ticker   *time.Ticker
	done     chan struct{}
}

// NewMemoryStore creates a new in-memory session store. A positive
// cleanupInterval starts a background sweep of expired sessions.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Create stores a new session.
func (m *MemoryStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sessionCopy := *session
	m.sessions[session.ID] = &sessionCopy
	return nil
}

// Get retrieves a session by identifier, evicting it when expired.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, ErrSessionExpired
	}

	sessionCopy := *session
	return &sessionCopy, nil
}

// Delete removes a session by identifier.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// DeleteExpired removes all expired sessions.
func (m *MemoryStore) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, id)
		}
	}

	return nil
}

// Close stops the cleanup goroutine.
func (m *MemoryStore) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}

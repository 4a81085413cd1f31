package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Save stores s and drops sessions that expired before s was issued.
func (m *MemoryStore) Save(_ context.Context, s Session, ttl time.Duration) error {
	issued := s.ExpiresAt.Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	for token, existing := range m.sessions {
		if !existing.ExpiresAt.After(issued) {
			delete(m.sessions, token)
		}
	}
	m.sessions[s.Token] = s
	return nil
}

func (m *MemoryStore) Load(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len reports how many sessions are held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

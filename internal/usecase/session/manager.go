// Package session keeps per-conversation state in memory and hands out
// sessions by id. Each session serializes its own turns; the manager only
// guards the registry itself.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/conversation"
	"github.com/kailas-cloud/shopmate/internal/domain/preference"
)

// Session is the full state of one conversation: the accumulated preference
// record and the chat history. Callers must hold the session lock for the
// duration of a turn so concurrent requests on the same session are applied
// one at a time.
type Session struct {
	ID      string
	Prefs   preference.Record
	History conversation.History

	mu sync.Mutex
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Manager is an in-memory session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers a new empty session and returns it.
func (m *Manager) Create() *Session {
	s := &Session{ID: uuid.NewString()}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id or domain.ErrSessionNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes the session with the given id, if present.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

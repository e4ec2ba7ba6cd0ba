package coach

import (
	"sync"

	"github.com/arcpointlabs/salescoach/internal/domain"
)

// holder pairs a session with its own lock so a slow completion call for
// one trainee never blocks another trainee's turn.
type holder struct {
	mu   sync.Mutex
	sess *domain.Session
}

// SessionManager is the in-memory session store, keyed by trainee and
// tab session. Injected into the service rather than accessed as an
// ambient global.
type SessionManager struct {
	mu      sync.RWMutex
	holders map[string]*holder
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{holders: make(map[string]*holder)}
}

func sessionKey(traineeID, tab string) string {
	return traineeID + ":" + tab
}

// acquire returns the holder for a key, creating it when absent.
func (m *SessionManager) acquire(key string) *holder {
	m.mu.RLock()
	h, ok := m.holders[key]
	m.mu.RUnlock()
	if ok {
		return h
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok = m.holders[key]; ok {
		return h
	}
	h = &holder{}
	m.holders[key] = h
	return h
}

// Snapshot returns a copy of the session for a key, or nil when none
// exists yet. The transcript slice is copied so callers can serialize it
// without racing live turns.
func (m *SessionManager) Snapshot(traineeID, tab string) *domain.Session {
	m.mu.RLock()
	h, ok := m.holders[sessionKey(traineeID, tab)]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess == nil {
		return nil
	}
	copied := *h.sess
	copied.Transcript = append([]domain.Message(nil), h.sess.Transcript...)
	return &copied
}

// Remove drops a session from the manager.
func (m *SessionManager) Remove(traineeID, tab string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holders, sessionKey(traineeID, tab))
}

// Len returns the number of tracked sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.holders)
}

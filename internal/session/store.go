package session

import "sync"

// Store maps user identifiers to sessions. Implementations must be safe
// for concurrent use by different users; callers follow a
// fetch-mutate-store pattern per event and never retain a session across
// events.
type Store interface {
	// GetOrCreate returns the user's session, creating a default idle
	// session on first contact.
	GetOrCreate(userID int64) Session
	// Save stores the session back for the user.
	Save(userID int64, s Session)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore builds the in-memory Store used in production. There is
// no eviction: memory grows with the number of distinct users, which is
// acceptable at kiosk scale.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]Session)}
}

func (m *memoryStore) GetOrCreate(userID int64) Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = Session{}
	m.sessions[userID] = s
	return s
}

func (m *memoryStore) Save(userID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

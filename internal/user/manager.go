package user

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks the records of currently online sessions. It is safe for
// concurrent use; the records themselves remain confined to their owning
// session.
type Manager struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

func NewManager() *Manager {
	return &Manager{users: make(map[uuid.UUID]*User)}
}

// Add registers a record for an online session, replacing any previous
// record for the same identity.
func (m *Manager) Add(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.UUID] = u
}

// Remove drops the record for the given identity.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Get returns the online record for id, or nil.
func (m *Manager) Get(id uuid.UUID) *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// Has reports whether the identity currently owns an active session.
// Bulk exports consult this so online state always wins over a stale
// storage snapshot.
func (m *Manager) Has(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[id]
	return ok
}

// Online returns a snapshot of all online records.
func (m *Manager) Online() []*User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out
}

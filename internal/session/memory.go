package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and the
// SESSION_BACKEND=memory configuration, where sessions do not survive a
// restart.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]string),
	}
}

func (m *MemoryStore) key(sid string, role Role) string {
	return sid + ":" + role.StorageKey()
}

func (m *MemoryStore) Set(_ context.Context, sid string, role Role, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[m.key(sid, role)] = value
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sid string, role Role) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.tokens[m.key(sid, role)]
	return value, ok, nil
}

func (m *MemoryStore) Clear(_ context.Context, sid string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, m.key(sid, role))
	return nil
}

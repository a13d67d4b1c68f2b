package session

import (
	"context"
	"sync"

	"fintrack/internal/core"
)

// MemoryStore is an in-process store for tests and ephemeral runs. The
// session is lost on exit.
type MemoryStore struct {
	mu   sync.Mutex
	sess core.Session
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Current(_ context.Context) (core.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set || !m.sess.Complete() {
		return core.Session{}, ErrNotAuthenticated
	}
	return m.sess, nil
}

func (m *MemoryStore) Save(_ context.Context, s core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	m.set = true
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = core.Session{}
	m.set = false
	return nil
}

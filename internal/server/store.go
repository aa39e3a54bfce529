package server

import (
	"errors"
	"sync"

	"github.com/cardroomhq/cardroom/internal/game"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrStatePersistence = errors.New("state persistence failed")
)

// Store persists table snapshots. SaveTable is called with the
// post-transition state before it becomes visible to anyone; a save that
// still fails after a retry aborts the transition and the previous state
// remains current.
type Store interface {
	SaveTable(t *game.Table) error
	LoadTable(id string) (*game.Table, error)
	DeleteTable(id string) error
}

// MemoryStore keeps cloned snapshots in memory. Clones on both save and
// load keep callers from sharing mutable state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*game.Table
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*game.Table)}
}

func (m *MemoryStore) SaveTable(t *game.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t.Clone()
	return nil
}

func (m *MemoryStore) LoadTable(id string) (*game.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t.Clone(), nil
}

func (m *MemoryStore) DeleteTable(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}

package catalog

import (
	"context"
	"sync"

	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
)

// MemoryStore is a Store kept in process memory, for local runs without a database.
// Statements are cloned on the way in and out, so callers never share them with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	views map[FeatureView][]*servingstmt.ServingPreparedStatement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[FeatureView][]*servingstmt.ServingPreparedStatement)}
}

func (m *MemoryStore) Replace(_ context.Context, view FeatureView, stmts []*servingstmt.ServingPreparedStatement) error {
	stored := make([]*servingstmt.ServingPreparedStatement, 0, len(stmts))
	for _, stmt := range stmts {
		if stmt != nil {
			stored = append(stored, stmt.Clone())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.views[view] = stored

	return nil
}

func (m *MemoryStore) List(_ context.Context, view FeatureView) ([]*servingstmt.ServingPreparedStatement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.views[view]
	stmts := make([]*servingstmt.ServingPreparedStatement, 0, len(stored))
	for _, stmt := range stored {
		stmts = append(stmts, stmt.Clone())
	}

	return stmts, nil
}

func (m *MemoryStore) Delete(_ context.Context, view FeatureView) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := int64(len(m.views[view]))
	delete(m.views, view)

	return deleted, nil
}

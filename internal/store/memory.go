package store

import (
	"context"
	"sync"

	"github.com/lei/test-results/internal/models"
)

// Compile-time interface check.
var _ RecordStore = (*MemoryStore)(nil)

// MemoryStore keeps records in process memory. Scan returns items in
// first-insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	index map[string]int
	items []models.TestRunRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// Ready always succeeds
func (m *MemoryStore) Ready() error {
	return nil
}

// Put stores rec, replacing an existing item with the same key in place
func (m *MemoryStore) Put(ctx context.Context, rec models.TestRunRecord) error {
	id, err := requireID(rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.index[id]; ok {
		m.items[i] = rec
		return nil
	}
	m.index[id] = len(m.items)
	m.items = append(m.items, rec)
	return nil
}

// Scan returns a copy of every stored record
func (m *MemoryStore) Scan(ctx context.Context) ([]models.TestRunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.TestRunRecord, len(m.items))
	copy(out, m.items)
	return out, nil
}

package cache

import (
	"context"
	"sync"

	"github.com/gameshop/backend/internal/domain/stock"
)

// InMemoryStockStore implements stock.Repository in process memory.
// Counters do not survive a restart and are not shared between nodes.
type InMemoryStockStore struct {
	mu      sync.RWMutex
	entries []stock.Entry
}

// NewInMemoryStockStore creates an empty in-memory stock store
func NewInMemoryStockStore() *InMemoryStockStore {
	return &InMemoryStockStore{}
}

// Load returns a copy of the saved counters
func (s *InMemoryStockStore) Load(context.Context) ([]stock.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]stock.Entry(nil), s.entries...), nil
}

// Save replaces the saved counters
func (s *InMemoryStockStore) Save(_ context.Context, entries []stock.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]stock.Entry(nil), entries...)
	return nil
}

// Close is a no-op
func (s *InMemoryStockStore) Close() error {
	return nil
}

var _ stock.Repository = (*InMemoryStockStore)(nil)

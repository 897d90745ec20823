// Package content implements the deliverables a product can carry: plugin
// items, console commands, permissions and the dummy placeholder content.
package content

import (
	"sort"
	"strings"
	"sync"

	"github.com/gameshop/backend/internal/domain/game"
)

// ItemRegistry resolves registered item ids to their template stack
type ItemRegistry interface {
	Lookup(itemID string) (game.ItemStack, bool)
}

// MemoryItemRegistry is an ItemRegistry backed by a map
type MemoryItemRegistry struct {
	mu    sync.RWMutex
	items map[string]game.ItemStack
}

// NewMemoryItemRegistry creates a registry holding the given templates
func NewMemoryItemRegistry(items ...game.ItemStack) *MemoryItemRegistry {
	r := &MemoryItemRegistry{items: make(map[string]game.ItemStack)}
	for _, item := range items {
		r.Register(item)
	}
	return r
}

// Register adds or replaces an item template
func (r *MemoryItemRegistry) Register(item game.ItemStack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.MaxStack <= 0 {
		item.MaxStack = 64
	}
	item.ItemID = strings.ToLower(item.ItemID)
	r.items[item.ItemID] = item
}

// Unregister removes an item template
func (r *MemoryItemRegistry) Unregister(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, strings.ToLower(itemID))
}

// Lookup returns the template of a registered item
func (r *MemoryItemRegistry) Lookup(itemID string) (game.ItemStack, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[strings.ToLower(itemID)]
	return item, ok
}

// IDs returns the registered item ids in order
func (r *MemoryItemRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package host

import (
	"sync"

	"github.com/gameshop/backend/internal/domain/game"
)

// Containers hands out one slot inventory per chest shop
type Containers struct {
	mu    sync.Mutex
	size  int
	boxes map[string]*SlotInventory
}

// NewContainers creates a registry whose containers have size slots
func NewContainers(size int) *Containers {
	if size <= 0 {
		size = 27
	}
	return &Containers{size: size, boxes: make(map[string]*SlotInventory)}
}

// For returns the container of a shop, creating it on first use
func (c *Containers) For(shopID string) game.Inventory {
	c.mu.Lock()
	defer c.mu.Unlock()
	box, ok := c.boxes[shopID]
	if !ok {
		box = NewSlotInventory(c.size)
		c.boxes[shopID] = box
	}
	return box
}

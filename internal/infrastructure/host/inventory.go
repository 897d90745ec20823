// Package host provides in-memory implementations of the game host contract.
// They back single-node test servers and the package tests of the trade flow.
package host

import (
	"sync"

	"github.com/gameshop/backend/internal/domain/game"
)

const defaultMaxStack = 64

// SlotInventory is a fixed size slot container
type SlotInventory struct {
	mu     sync.Mutex
	holder game.Player
	slots  []game.ItemStack
}

// NewSlotInventory creates an empty inventory with size slots
func NewSlotInventory(size int) *SlotInventory {
	return &SlotInventory{slots: make([]game.ItemStack, size)}
}

// Holder returns the owning player
func (inv *SlotInventory) Holder() game.Player {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.holder
}

func (inv *SlotInventory) setHolder(p game.Player) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.holder = p
}

// Slots returns a copy of the slots
func (inv *SlotInventory) Slots() []game.ItemStack {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return append([]game.ItemStack(nil), inv.slots...)
}

// Count returns the total amount of items similar to stack
func (inv *SlotInventory) Count(stack game.ItemStack) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	total := 0
	for _, s := range inv.slots {
		if s.Amount > 0 && s.Similar(stack) {
			total += s.Amount
		}
	}
	return total
}

// Space returns how many items similar to stack still fit
func (inv *SlotInventory) Space(stack game.ItemStack) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	limit := maxStack(stack)
	space := 0
	for _, s := range inv.slots {
		switch {
		case s.Amount == 0:
			space += limit
		case s.Similar(stack) && s.Amount < limit:
			space += limit - s.Amount
		}
	}
	return space
}

// Add fills partial stacks first, then empty slots, and returns the leftover
func (inv *SlotInventory) Add(stack game.ItemStack, amount int) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	limit := maxStack(stack)
	for i := range inv.slots {
		if amount <= 0 {
			return 0
		}
		s := &inv.slots[i]
		if s.Amount > 0 && s.Similar(stack) && s.Amount < limit {
			n := min(limit-s.Amount, amount)
			s.Amount += n
			amount -= n
		}
	}
	for i := range inv.slots {
		if amount <= 0 {
			return 0
		}
		if inv.slots[i].Amount == 0 {
			n := min(limit, amount)
			inv.slots[i] = stack.WithAmount(n)
			amount -= n
		}
	}
	return max(amount, 0)
}

// Remove takes up to amount items similar to stack, last slots first
func (inv *SlotInventory) Remove(stack game.ItemStack, amount int) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	removed := 0
	for i := len(inv.slots) - 1; i >= 0 && removed < amount; i-- {
		s := &inv.slots[i]
		if s.Amount == 0 || !s.Similar(stack) {
			continue
		}
		n := min(s.Amount, amount-removed)
		s.Amount -= n
		removed += n
		if s.Amount == 0 {
			inv.slots[i] = game.ItemStack{}
		}
	}
	return removed
}

func maxStack(stack game.ItemStack) int {
	if stack.MaxStack <= 0 {
		return defaultMaxStack
	}
	return stack.MaxStack
}

var _ game.Inventory = (*SlotInventory)(nil)

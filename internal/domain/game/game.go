// Package game declares the contract this backend consumes from the host game
// server: players, their inventories, command execution and permissions.
package game

import "github.com/google/uuid"

// ItemStack is a stack of a registered item.
// MaxStack is the maximum amount a single inventory slot can hold.
type ItemStack struct {
	ItemID      string   `json:"item_id"`
	Amount      int      `json:"amount"`
	MaxStack    int      `json:"max_stack"`
	DisplayName string   `json:"display_name,omitempty"`
	Lore        []string `json:"lore,omitempty"`
}

// Similar reports whether both stacks hold the same item
func (s ItemStack) Similar(other ItemStack) bool {
	return s.ItemID == other.ItemID
}

// WithAmount returns a copy of the stack with a different amount
func (s ItemStack) WithAmount(amount int) ItemStack {
	s.Amount = amount
	if s.Lore != nil {
		s.Lore = append([]string(nil), s.Lore...)
	}
	return s
}

// Inventory is a player owned content container
type Inventory interface {
	// Holder returns the player owning this inventory, nil for detached containers
	Holder() Player
	// Count returns the total amount of items matching the stack
	Count(stack ItemStack) int
	// Space returns how many more items similar to stack fit into the container
	Space(stack ItemStack) int
	// Add stores amount items of stack and returns the amount that did not fit
	Add(stack ItemStack, amount int) int
	// Remove takes up to amount items similar to stack and returns the amount removed
	Remove(stack ItemStack, amount int) int
}

// Player is an online player
type Player interface {
	ID() uuid.UUID
	Name() string
	Inventory() Inventory
	HasPermission(node string) bool
}

// CommandDispatcher executes commands on behalf of the server console
type CommandDispatcher interface {
	Dispatch(command string) error
}

// PermissionService grants permission nodes to players
type PermissionService interface {
	Grant(player Player, node string) error
}

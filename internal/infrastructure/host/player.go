package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/google/uuid"
)

// Player is an in-memory online player
type Player struct {
	id    uuid.UUID
	name  string
	inv   *SlotInventory
	mu    sync.RWMutex
	perms map[string]bool
}

// NewPlayer creates a player owning inv. A nil inv gets a 36 slot inventory.
func NewPlayer(name string, inv *SlotInventory, permissions ...string) *Player {
	if inv == nil {
		inv = NewSlotInventory(36)
	}
	p := &Player{
		id:    uuid.New(),
		name:  name,
		inv:   inv,
		perms: make(map[string]bool),
	}
	for _, node := range permissions {
		p.perms[node] = true
	}
	inv.setHolder(p)
	return p
}

func (p *Player) ID() uuid.UUID             { return p.id }
func (p *Player) Name() string              { return p.name }
func (p *Player) Inventory() game.Inventory { return p.inv }

// Slots exposes the concrete inventory
func (p *Player) Slots() *SlotInventory { return p.inv }

// HasPermission reports whether the node was granted
func (p *Player) HasPermission(node string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.perms[node]
}

// AddPermission grants a node
func (p *Player) AddPermission(node string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.perms[node] = true
}

// Permissions grants nodes to in-memory players
type Permissions struct{}

// Grant adds node to player
func (Permissions) Grant(player game.Player, node string) error {
	p, ok := player.(*Player)
	if !ok {
		return fmt.Errorf("cannot grant permissions to %T", player)
	}
	p.AddPermission(node)
	return nil
}

// CommandLog records dispatched commands instead of running them
type CommandLog struct {
	mu       sync.Mutex
	commands []string
	fail     bool
}

// ErrDispatchRejected is returned by a failing CommandLog
var ErrDispatchRejected = errors.New("command rejected")

// NewCommandLog creates an empty command log
func NewCommandLog() *CommandLog {
	return &CommandLog{}
}

// Dispatch records the command
func (l *CommandLog) Dispatch(command string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return ErrDispatchRejected
	}
	l.commands = append(l.commands, command)
	return nil
}

// SetFailing makes subsequent dispatches fail
func (l *CommandLog) SetFailing(fail bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail = fail
}

// Commands returns the dispatched commands in order
func (l *CommandLog) Commands() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.commands...)
}

var (
	_ game.Player            = (*Player)(nil)
	_ game.PermissionService = Permissions{}
	_ game.CommandDispatcher = (*CommandLog)(nil)
)

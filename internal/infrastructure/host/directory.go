package host

import (
	"sort"
	"strings"
	"sync"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Directory tracks the players currently online
type Directory struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*Player
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{players: make(map[uuid.UUID]*Player)}
}

// Join adds a player
func (d *Directory) Join(p *Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players[p.ID()] = p
}

// Leave removes a player
func (d *Directory) Leave(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.players, id)
}

// Find returns the online player with the id
func (d *Directory) Find(id uuid.UUID) (game.Player, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.players[id]
	if !ok {
		return nil, shared.ErrNotFound.Withf("Player is not online")
	}
	return p, nil
}

// FindByName looks a player up by name, ignoring case
func (d *Directory) FindByName(name string) (*Player, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.players {
		if strings.EqualFold(p.Name(), name) {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound.Withf("Player is not online")
}

// Online returns the online players sorted by name
func (d *Directory) Online() []*Player {
	d.mu.RLock()
	out := make([]*Player, 0, len(d.players))
	for _, p := range d.players {
		out = append(out, p)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Package shop holds the shop variants products belong to.
package shop

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
)

// Kind identifies a shop variant
type Kind string

const (
	KindVirtual Kind = "virtual"
	KindChest   Kind = "chest"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is known
func (k Kind) IsValid() bool {
	return k == KindVirtual || k == KindChest
}

// Shop is a product container with per-direction trade switches
type Shop interface {
	product.Shop
	Kind() Kind
	Name() string
	Product(id string) (*product.Product, bool)
	Products() []*product.Product
}

// Base carries what every shop variant shares
type Base struct {
	mu          sync.RWMutex
	id          string
	name        string
	buyEnabled  bool
	sellEnabled bool
	products    map[string]*product.Product
}

func newBase(id, name string) (*Base, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, shared.NewDomainError("INVALID_SHOP_ID", "Shop id cannot be empty")
	}
	if name == "" {
		name = id
	}
	return &Base{
		id:          id,
		name:        name,
		buyEnabled:  true,
		sellEnabled: true,
		products:    make(map[string]*product.Product),
	}, nil
}

// ID returns the shop id
func (b *Base) ID() string {
	return b.id
}

// Name returns the display name
func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// SetName replaces the display name
func (b *Base) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// IsTransactionEnabled reports whether the shop accepts trades of that direction
func (b *Base) IsTransactionEnabled(tradeType product.TradeType) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if tradeType == product.TradeBuy {
		return b.buyEnabled
	}
	return b.sellEnabled
}

// SetTransactionEnabled switches a trade direction on or off
func (b *Base) SetTransactionEnabled(tradeType product.TradeType, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tradeType == product.TradeBuy {
		b.buyEnabled = enabled
		return
	}
	b.sellEnabled = enabled
}

// AddProduct registers a product created for this shop
func (b *Base) AddProduct(p *product.Product) error {
	if p.Shop().ID() != b.id {
		return fmt.Errorf("%w: product %s belongs to shop %s", shared.ErrInvalidInput, p.ID(), p.Shop().ID())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.products[p.ID()]; exists {
		return fmt.Errorf("%w: product '%s' in shop '%s'", shared.ErrAlreadyExists, p.ID(), b.id)
	}
	b.products[p.ID()] = p
	return nil
}

// RemoveProduct drops a product
func (b *Base) RemoveProduct(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id = strings.ToLower(id)
	if _, exists := b.products[id]; !exists {
		return fmt.Errorf("%w: product '%s' in shop '%s'", shared.ErrNotFound, id, b.id)
	}
	delete(b.products, id)
	return nil
}

// Product returns a product by id
func (b *Base) Product(id string) (*product.Product, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.products[strings.ToLower(id)]
	return p, ok
}

// Products returns all products ordered by id
func (b *Base) Products() []*product.Product {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list := make([]*product.Product, 0, len(b.products))
	for _, p := range b.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID() < list[j].ID()
	})
	return list
}

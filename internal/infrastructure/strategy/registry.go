package strategy

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
)

// PricerFactory builds and serializes one kind of pricer
type PricerFactory interface {
	Type() product.PricingType
	Description() string
	// Build creates a pricer from stored settings
	Build(settings json.RawMessage) (product.Pricer, error)
	// Encode captures the current state of a pricer built by this factory
	Encode(pricer product.Pricer) (json.RawMessage, error)
}

// PricerRegistry manages pricer factory registrations
type PricerRegistry struct {
	mu          sync.RWMutex
	factories   map[product.PricingType]PricerFactory
	defaultType product.PricingType
}

// NewPricerRegistry creates a new pricer registry
func NewPricerRegistry() *PricerRegistry {
	return &PricerRegistry{
		factories: make(map[product.PricingType]PricerFactory),
	}
}

// Register registers a pricer factory
func (r *PricerRegistry) Register(f PricerFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := f.Type()
	if _, exists := r.factories[t]; exists {
		return fmt.Errorf("%w: pricer '%s' already registered", shared.ErrAlreadyExists, t)
	}
	r.factories[t] = f
	return nil
}

// Unregister removes a pricer factory
func (r *PricerRegistry) Unregister(t product.PricingType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[t]; !exists {
		return fmt.Errorf("%w: pricer '%s' not found", shared.ErrNotFound, t)
	}
	delete(r.factories, t)

	if r.defaultType == t {
		r.defaultType = ""
	}
	return nil
}

// SetDefault sets the pricer type used when none is given
func (r *PricerRegistry) SetDefault(t product.PricingType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[t]; !exists {
		return fmt.Errorf("%w: pricer '%s' not found", shared.ErrNotFound, t)
	}
	r.defaultType = t
	return nil
}

// Get returns a factory by type, or the default if t is empty
func (r *PricerRegistry) Get(t product.PricingType) (PricerFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t == "" {
		t = r.defaultType
		if t == "" {
			return nil, fmt.Errorf("%w: no default pricer set", shared.ErrNotFound)
		}
	}

	f, exists := r.factories[t]
	if !exists {
		return nil, fmt.Errorf("%w: pricer '%s' not found", shared.ErrNotFound, t)
	}
	return f, nil
}

// Build creates a pricer of the given type from stored settings
func (r *PricerRegistry) Build(t product.PricingType, settings json.RawMessage) (product.Pricer, error) {
	f, err := r.Get(t)
	if err != nil {
		return nil, err
	}
	p, err := f.Build(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s pricer: %v", shared.ErrInvalidInput, f.Type(), err)
	}
	return p, nil
}

// Encode serializes a pricer with the factory of its type
func (r *PricerRegistry) Encode(p product.Pricer) (product.PricingType, json.RawMessage, error) {
	f, err := r.Get(p.Type())
	if err != nil {
		return "", nil, err
	}
	raw, err := f.Encode(p)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s pricer: %w", p.Type(), err)
	}
	return p.Type(), raw, nil
}

// PricerInfo describes a registered pricer type
type PricerInfo struct {
	Type        product.PricingType `json:"type"`
	Description string              `json:"description"`
	Default     bool                `json:"default"`
}

// List returns all registered pricer types ordered by name
func (r *PricerRegistry) List() []PricerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]PricerInfo, 0, len(r.factories))
	for t, f := range r.factories {
		infos = append(infos, PricerInfo{
			Type:        t,
			Description: f.Description(),
			Default:     t == r.defaultType,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Type < infos[j].Type
	})
	return infos
}

package shop

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Placeholder tokens rendered by shop products
const (
	TokenShopName         = "%product_shop%"
	TokenDiscountAllowed  = "%product_discount_allowed%"
	TokenDiscountModifier = "%shop_discount_percent%"
	TokenShopOwner        = "%shop_owner%"
)

// VirtualShop is a server owned shop with unlimited stock, scheduled discounts
// and rank based sell multipliers.
type VirtualShop struct {
	*Base
	mu          sync.RWMutex
	discounts   []Discount
	multipliers product.SellMultiplierResolver
	now         func() time.Time
}

// VirtualOption configures a VirtualShop
type VirtualOption func(*VirtualShop)

// WithClock replaces the time source used to evaluate discounts
func WithClock(now func() time.Time) VirtualOption {
	return func(s *VirtualShop) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMultipliers sets the sell multiplier resolver of the shop's products
func WithMultipliers(r product.SellMultiplierResolver) VirtualOption {
	return func(s *VirtualShop) {
		s.multipliers = r
	}
}

// NewVirtualShop creates a virtual shop
func NewVirtualShop(id, name string, opts ...VirtualOption) (*VirtualShop, error) {
	base, err := newBase(id, name)
	if err != nil {
		return nil, err
	}
	s := &VirtualShop{
		Base:        base,
		multipliers: NewRankMultipliers("", nil),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kind returns KindVirtual
func (s *VirtualShop) Kind() Kind {
	return KindVirtual
}

// SetDiscounts replaces the discount schedule
func (s *VirtualShop) SetDiscounts(discounts []Discount) error {
	for i, d := range discounts {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("discount %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts = append([]Discount(nil), discounts...)
	return nil
}

// Discounts returns the discount schedule
func (s *VirtualShop) Discounts() []Discount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Discount(nil), s.discounts...)
}

// ActiveDiscount returns the highest discount percent in effect, zero for none
func (s *VirtualShop) ActiveDiscount() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	best := decimal.Zero
	for _, d := range s.discounts {
		if d.IsActive(now) && d.Percent.GreaterThan(best) {
			best = d.Percent
		}
	}
	return best
}

// DiscountModifier returns the buy price factor, 1 without active discount
func (s *VirtualShop) DiscountModifier() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(s.ActiveDiscount().Div(hundred))
}

// SellMultipliers returns the sell multiplier resolver
func (s *VirtualShop) SellMultipliers() product.SellMultiplierResolver {
	return s.multipliers
}

// VirtualProductOptions carries the variant settings of a virtual product
type VirtualProductOptions struct {
	DiscountAllowed bool
	Pricer          product.Pricer
	Limits          product.LimitResolver
}

// NewVirtualProduct creates a product of this shop with the shop discount and
// sell multipliers attached, and registers it.
func (s *VirtualShop) NewVirtualProduct(id string, currency valueobject.Currency, content product.Content, o VirtualProductOptions) (*product.Product, *VirtualDiscount, error) {
	discount := NewVirtualDiscount(s, o.DiscountAllowed)

	p, err := product.New(id, s, currency, content,
		product.WithPricer(o.Pricer),
		product.WithDiscountPolicy(discount),
		product.WithSellMultiplier(s.multipliers),
		product.WithLimits(o.Limits),
		product.WithPlaceholders(func(game.Player) placeholder.Replacer {
			return placeholder.New(
				TokenShopName, s.Name(),
				TokenDiscountAllowed, strconv.FormatBool(discount.DiscountAllowed()),
				TokenDiscountModifier, s.ActiveDiscount().String(),
			)
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := s.AddProduct(p); err != nil {
		return nil, nil, err
	}
	return p, discount, nil
}

var _ Shop = (*VirtualShop)(nil)

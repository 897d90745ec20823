package product

import (
	"errors"
	"strings"
	"sync"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product is a tradeable thing of a shop: one pricer, one handler/packer pair
// and one currency under a lowercase id unique within the shop.
//
// Product never fails on business rules. Callers check IsValid and IsTradeable
// before mutating inventories.
type Product struct {
	mu sync.RWMutex

	id   string
	shop Shop

	currency       valueobject.Currency
	content        Content
	pricer         Pricer
	discount       DiscountPolicy
	sellMultiplier SellMultiplierResolver
	limits         LimitResolver
	explicit       PlaceholderFunc

	events shared.EventRecorder
}

// state is a consistent copy of the mutable references of a product
type state struct {
	shop           Shop
	currency       valueobject.Currency
	content        Content
	pricer         Pricer
	discount       DiscountPolicy
	sellMultiplier SellMultiplierResolver
	limits         LimitResolver
	explicit       PlaceholderFunc
}

// New creates a product. Without WithPricer the product starts with a flat
// pricer disabling both directions.
func New(id string, shop Shop, currency valueobject.Currency, content Content, opts ...Option) (*Product, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product id cannot be empty")
	}
	if shop == nil {
		return nil, errors.New("product shop is required")
	}
	if currency == nil {
		return nil, errors.New("product currency is required")
	}
	if content.IsZero() {
		return nil, errors.New("product content is required")
	}

	p := &Product{
		id:       id,
		shop:     shop,
		currency: currency,
		content:  content,
		pricer:   NewDisabledPricer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.applyRounding()
	return p, nil
}

// applyRounding hands the currency rounding to the pricer. Callers hold mu
// or own p exclusively.
func (p *Product) applyRounding() {
	if r, ok := p.pricer.(RoundingPricer); ok {
		r.SetRounding(p.currency.FineValue)
	}
}

func (p *Product) load() state {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return state{
		shop:           p.shop,
		currency:       p.currency,
		content:        p.content,
		pricer:         p.pricer,
		discount:       p.discount,
		sellMultiplier: p.sellMultiplier,
		limits:         p.limits,
		explicit:       p.explicit,
	}
}

// ID returns the product id
func (p *Product) ID() string {
	return p.id
}

// Key returns "<shop>/<product>", unique across shops
func (p *Product) Key() string {
	return p.Shop().ID() + "/" + p.id
}

// Shop returns the owning shop
func (p *Product) Shop() Shop {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shop
}

// Price returns the currency rounded price for a trade direction.
// A nil player skips player specific modifiers.
func (p *Product) Price(tradeType TradeType, player game.Player) decimal.Decimal {
	s := p.load()
	price := s.pricer.Price(tradeType)

	if tradeType == TradeBuy && price.IsPositive() && s.discount != nil && s.discount.DiscountAllowed() {
		price = price.Mul(s.discount.DiscountModifier())
	}
	if tradeType == TradeSell && player != nil && s.sellMultiplier != nil {
		price = price.Mul(s.sellMultiplier.SellMultiplier(player))
	}

	return s.currency.FineValue(price)
}

// PriceBuy returns the buy price for the player
func (p *Product) PriceBuy(player game.Player) decimal.Decimal {
	return p.Price(TradeBuy, player)
}

// PriceSell returns the sell price for the player
func (p *Product) PriceSell(player game.Player) decimal.Decimal {
	return p.Price(TradeSell, player)
}

// PriceSellAll returns what the player receives for selling every unit they
// hold, capped by the sell limit. Never negative.
func (p *Product) PriceSellAll(player game.Player) decimal.Decimal {
	amountHas := p.CountUnits(player)
	amountCan := p.AvailableAmount(player, TradeSell)
	if amountCan < 0 {
		amountCan = amountHas
	}

	balance := min(amountCan, amountHas)
	price := p.PriceSell(player).Mul(decimal.NewFromInt(int64(balance)))

	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// AvailableAmount returns how many units the player may still trade, negative for unlimited
func (p *Product) AvailableAmount(player game.Player, tradeType TradeType) int {
	s := p.load()
	if s.limits == nil {
		return -1
	}
	return s.limits.AvailableAmount(player, tradeType)
}

// SetPrice stores the currency rounded price in the pricer
func (p *Product) SetPrice(tradeType TradeType, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.pricer.Price(tradeType)
	fine := p.currency.FineValue(price)
	p.pricer.SetPrice(tradeType, fine)

	p.events.AddDomainEvent(NewPriceChangedEvent(p.shop.ID(), p.id, tradeType, old, fine))
}

// IsTradeable dispatches to IsBuyable or IsSellable
func (p *Product) IsTradeable(tradeType TradeType) bool {
	if tradeType == TradeBuy {
		return p.IsBuyable()
	}
	return p.IsSellable()
}

// IsBuyable reports whether the buy price is enabled
func (p *Product) IsBuyable() bool {
	return !p.load().pricer.BuyPrice().IsNegative()
}

// IsSellable reports whether the sell price is enabled. While buying is
// enabled in the shop and the product is buyable, the sell price must not
// exceed the buy price.
func (p *Product) IsSellable() bool {
	s := p.load()
	sellPrice := s.pricer.SellPrice()
	if sellPrice.IsNegative() {
		return false
	}

	buyPrice := s.pricer.BuyPrice()
	if s.shop.IsTransactionEnabled(TradeBuy) && !buyPrice.IsNegative() {
		return sellPrice.LessThanOrEqual(buyPrice)
	}
	return true
}

// IsValid reports whether the product content still exists
func (p *Product) IsValid() bool {
	c := p.load().content
	if c.packer.IsDummy() {
		return false
	}
	return c.handler.Validate(c.packer)
}

// UnitAmount returns the raw amount making one unit
func (p *Product) UnitAmount() int {
	return p.load().content.packer.UnitAmount()
}

// Delivery gives units of the product to the player
func (p *Product) Delivery(player game.Player, units int) {
	p.DeliveryIn(player.Inventory(), units)
}

// DeliveryIn puts units of the product into the inventory
func (p *Product) DeliveryIn(inv game.Inventory, units int) {
	p.load().content.packer.Delivery(inv, units)
}

// Take removes units of the product from the player and returns the units removed
func (p *Product) Take(player game.Player, units int) int {
	return p.TakeIn(player.Inventory(), units)
}

// TakeIn removes units of the product from the inventory and returns the units removed
func (p *Product) TakeIn(inv game.Inventory, units int) int {
	return p.load().content.packer.Take(inv, units)
}

// Count returns the raw amount of the product the player holds
func (p *Product) Count(player game.Player) int {
	return p.CountIn(player.Inventory())
}

// CountIn returns the raw amount of the product in the inventory
func (p *Product) CountIn(inv game.Inventory) int {
	return p.load().content.packer.Count(inv)
}

// CountUnits returns the whole units the player holds
func (p *Product) CountUnits(player game.Player) int {
	return p.CountUnitsIn(player.Inventory())
}

// CountUnitsIn returns the whole units in the inventory. Partial units are not tradeable.
func (p *Product) CountUnitsIn(inv game.Inventory) int {
	packer := p.load().content.packer
	unit := packer.UnitAmount()
	if unit <= 0 {
		return 0
	}
	return packer.Count(inv) / unit
}

// CountSpace returns the raw amount of the product that still fits the player inventory
func (p *Product) CountSpace(player game.Player) int {
	return p.CountSpaceIn(player.Inventory())
}

// CountSpaceIn returns the raw amount of the product that still fits the inventory
func (p *Product) CountSpaceIn(inv game.Inventory) int {
	return p.load().content.packer.CountSpace(inv)
}

// HasSpace reports whether at least one unit fits the player inventory
func (p *Product) HasSpace(player game.Player) bool {
	return p.HasSpaceIn(player.Inventory())
}

// HasSpaceIn reports whether at least one unit fits the inventory
func (p *Product) HasSpaceIn(inv game.Inventory) bool {
	return p.load().content.packer.HasSpace(inv)
}

// ReplacePlaceholders returns the pipeline explicit -> packer -> pricer
func (p *Product) ReplacePlaceholders(player game.Player) placeholder.Replacer {
	s := p.load()

	var explicit placeholder.Replacer
	if s.explicit != nil {
		explicit = s.explicit(player)
	}
	return placeholder.Chain(
		explicit,
		s.content.packer.Placeholders(),
		s.pricer.Placeholders(),
	)
}

// Preview returns the visual representation of the deliverable
func (p *Product) Preview() game.ItemStack {
	return p.load().content.packer.Preview()
}

// Content returns the handler/packer pair
func (p *Product) Content() Content {
	return p.load().content
}

// Handler returns the content handler
func (p *Product) Handler() Handler {
	return p.load().content.handler
}

// Packer returns the content packer
func (p *Product) Packer() Packer {
	return p.load().content.packer
}

// SetContent replaces the handler and packer together
func (p *Product) SetContent(content Content) error {
	if content.IsZero() {
		return errors.New("product content is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = content
	return nil
}

// SetHandler pairs handler and packer and installs them as one content
func (p *Product) SetHandler(handler Handler, packer Packer) error {
	content, err := NewContent(handler, packer)
	if err != nil {
		return err
	}
	return p.SetContent(content)
}

// Pricer returns the pricer
func (p *Product) Pricer() Pricer {
	return p.load().pricer
}

// SetPricer replaces the pricing strategy
func (p *Product) SetPricer(pricer Pricer) error {
	if pricer == nil {
		return errors.New("product pricer is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pricer = pricer
	p.applyRounding()
	return nil
}

// Currency returns the currency
func (p *Product) Currency() valueobject.Currency {
	return p.load().currency
}

// SetCurrency replaces the currency
func (p *Product) SetCurrency(currency valueobject.Currency) error {
	if currency == nil {
		return errors.New("product currency is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currency = currency
	p.applyRounding()
	return nil
}

// DiscountPolicy returns the attached discount policy, nil for non virtual products
func (p *Product) DiscountPolicy() DiscountPolicy {
	return p.load().discount
}

// SetLimits replaces the trade limit resolver
func (p *Product) SetLimits(limits LimitResolver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limits = limits
}

// GetDomainEvents returns the pending domain events
func (p *Product) GetDomainEvents() []shared.DomainEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]shared.DomainEvent(nil), p.events.GetDomainEvents()...)
}

// ClearDomainEvents drops the pending domain events
func (p *Product) ClearDomainEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events.ClearDomainEvents()
}

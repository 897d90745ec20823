package pricing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/shopspring/decimal"
)

// Placeholder tokens rendered by the dynamic pricer
const (
	TokenDemand = "%product_demand%"
)

// DynamicBounds configures one trade direction of a dynamic pricer
type DynamicBounds struct {
	Initial decimal.Decimal `json:"initial"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	// Step is the price change per unit of net demand
	Step decimal.Decimal `json:"step"`
}

// Enabled reports whether the direction is tradeable
func (b DynamicBounds) Enabled() bool {
	return !b.Initial.IsNegative()
}

// Validate checks the bounds of an enabled direction
func (b DynamicBounds) Validate() error {
	if !b.Enabled() {
		return nil
	}
	if b.Min.IsNegative() {
		return errors.New("min price cannot be negative")
	}
	if b.Max.LessThan(b.Min) {
		return fmt.Errorf("max price %s is below min price %s", b.Max, b.Min)
	}
	if b.Step.IsNegative() {
		return errors.New("step cannot be negative")
	}
	return nil
}

func (b DynamicBounds) price(demand int64, round product.RoundingFunc) decimal.Decimal {
	if !b.Enabled() {
		return b.Initial
	}
	price := b.Initial.Add(b.Step.Mul(decimal.NewFromInt(demand)))
	if price.LessThan(b.Min) {
		price = b.Min
	}
	if price.GreaterThan(b.Max) {
		price = b.Max
	}
	return round(price)
}

// DynamicSettings is the stored configuration of a dynamic pricer
type DynamicSettings struct {
	Buy    DynamicBounds `json:"buy"`
	Sell   DynamicBounds `json:"sell"`
	Demand int64         `json:"demand"`
}

// Validate checks both directions
func (s DynamicSettings) Validate() error {
	if err := s.Buy.Validate(); err != nil {
		return fmt.Errorf("buy: %w", err)
	}
	if err := s.Sell.Validate(); err != nil {
		return fmt.Errorf("sell: %w", err)
	}
	return nil
}

// DynamicPricer moves prices with the net demand of a product.
// Purchases raise both prices, sales lower them, within the configured bounds.
type DynamicPricer struct {
	mu     sync.RWMutex
	buy    DynamicBounds
	sell   DynamicBounds
	demand int64
	round  product.RoundingFunc
}

// NewDynamicPricer creates a dynamic pricer from validated settings
func NewDynamicPricer(settings DynamicSettings) (*DynamicPricer, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dynamic pricer settings: %w", err)
	}
	return &DynamicPricer{
		buy:    settings.Buy,
		sell:   settings.Sell,
		demand: settings.Demand,
		round:  noRounding,
	}, nil
}

// Type returns PricingDynamic
func (p *DynamicPricer) Type() product.PricingType {
	return product.PricingDynamic
}

// Price returns the current price for the trade direction
func (p *DynamicPricer) Price(tradeType product.TradeType) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if tradeType == product.TradeBuy {
		return p.buy.price(p.demand, p.round)
	}
	return p.sell.price(p.demand, p.round)
}

// SetRounding rounds every demand adjusted price
func (p *DynamicPricer) SetRounding(round product.RoundingFunc) {
	if round == nil {
		round = noRounding
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.round = round
}

// SetPrice resets the initial price of the direction. A price outside the
// bounds widens them so the price is reachable.
func (p *DynamicPricer) SetPrice(tradeType product.TradeType, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bounds := &p.sell
	if tradeType == product.TradeBuy {
		bounds = &p.buy
	}
	bounds.Initial = price
	if price.IsNegative() {
		return
	}
	if price.LessThan(bounds.Min) {
		bounds.Min = price
	}
	if price.GreaterThan(bounds.Max) {
		bounds.Max = price
	}
	p.demand = 0
}

func (p *DynamicPricer) BuyPrice() decimal.Decimal  { return p.Price(product.TradeBuy) }
func (p *DynamicPricer) SellPrice() decimal.Decimal { return p.Price(product.TradeSell) }

// RecordTransaction adjusts the net demand by the traded units
func (p *DynamicPricer) RecordTransaction(tradeType product.TradeType, units int) {
	if units <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tradeType == product.TradeBuy {
		p.demand += int64(units)
		return
	}
	p.demand -= int64(units)
}

// Demand returns the net demand, purchases minus sales
func (p *DynamicPricer) Demand() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.demand
}

// SetDemand restores a persisted net demand
func (p *DynamicPricer) SetDemand(demand int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.demand = demand
}

// Settings returns the current configuration including the demand
func (p *DynamicPricer) Settings() DynamicSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return DynamicSettings{Buy: p.buy, Sell: p.sell, Demand: p.demand}
}

// Placeholders renders the current prices and the net demand
func (p *DynamicPricer) Placeholders() placeholder.Replacer {
	return placeholder.Chain(
		product.PriceTokens(p),
		placeholder.New(TokenDemand, fmt.Sprintf("%d", p.Demand())),
	)
}

var (
	_ product.Pricer         = (*DynamicPricer)(nil)
	_ product.DemandTracker  = (*DynamicPricer)(nil)
	_ product.RoundingPricer = (*DynamicPricer)(nil)
)

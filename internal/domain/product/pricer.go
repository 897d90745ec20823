package product

import (
	"sync"

	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/shopspring/decimal"
)

// PricingType identifies a pricer implementation
type PricingType string

const (
	PricingFlat    PricingType = "flat"
	PricingDynamic PricingType = "dynamic"
	PricingFloat   PricingType = "float"
)

// String returns the string representation of the pricing type
func (t PricingType) String() string {
	return string(t)
}

// Placeholder tokens rendered by every pricer
const (
	TokenPriceBuy  = "%product_price_buy%"
	TokenPriceSell = "%product_price_sell%"
)

// Disabled is the sentinel price disabling a trade direction
var Disabled = decimal.NewFromInt(-1)

// Pricer owns the base buy and sell prices of a product.
// A negative price disables its trade direction.
type Pricer interface {
	Type() PricingType
	Price(tradeType TradeType) decimal.Decimal
	SetPrice(tradeType TradeType, price decimal.Decimal)
	BuyPrice() decimal.Decimal
	SellPrice() decimal.Decimal
	Placeholders() placeholder.Replacer
}

// RoundingFunc rounds a price to the precision of a currency
type RoundingFunc func(decimal.Decimal) decimal.Decimal

// RoundingPricer is implemented by pricers that compute prices on their own,
// such as random rolls or demand steps. The product hands them the rounding
// of its currency so stored prices stay currency rounded.
type RoundingPricer interface {
	SetRounding(round RoundingFunc)
}

// DemandTracker is implemented by pricers reacting to trade volume
type DemandTracker interface {
	RecordTransaction(tradeType TradeType, units int)
}

// FlatPricer keeps fixed prices that only change through SetPrice
type FlatPricer struct {
	mu   sync.RWMutex
	buy  decimal.Decimal
	sell decimal.Decimal
}

// NewFlatPricer creates a flat pricer
func NewFlatPricer(buy, sell decimal.Decimal) *FlatPricer {
	return &FlatPricer{buy: buy, sell: sell}
}

// NewDisabledPricer creates a flat pricer with both directions disabled
func NewDisabledPricer() *FlatPricer {
	return NewFlatPricer(Disabled, Disabled)
}

// Type returns PricingFlat
func (p *FlatPricer) Type() PricingType {
	return PricingFlat
}

// Price returns the price for the trade direction
func (p *FlatPricer) Price(tradeType TradeType) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if tradeType == TradeBuy {
		return p.buy
	}
	return p.sell
}

// SetPrice replaces the price for the trade direction
func (p *FlatPricer) SetPrice(tradeType TradeType, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tradeType == TradeBuy {
		p.buy = price
		return
	}
	p.sell = price
}

func (p *FlatPricer) BuyPrice() decimal.Decimal  { return p.Price(TradeBuy) }
func (p *FlatPricer) SellPrice() decimal.Decimal { return p.Price(TradeSell) }

// Placeholders renders the raw prices
func (p *FlatPricer) Placeholders() placeholder.Replacer {
	return PriceTokens(p)
}

// PriceTokens returns the replacer for the tokens shared by every pricer
func PriceTokens(p Pricer) placeholder.Replacer {
	return placeholder.New(
		TokenPriceBuy, p.BuyPrice().String(),
		TokenPriceSell, p.SellPrice().String(),
	)
}

// Ensure FlatPricer implements Pricer
var _ Pricer = (*FlatPricer)(nil)

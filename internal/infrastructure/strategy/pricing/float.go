package pricing

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/shopspring/decimal"
)

// FloatRange configures one trade direction of a float pricer.
// A negative Min disables the direction.
type FloatRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Enabled reports whether the direction is tradeable
func (r FloatRange) Enabled() bool {
	return !r.Min.IsNegative()
}

// Validate checks the range of an enabled direction
func (r FloatRange) Validate() error {
	if r.Enabled() && r.Max.LessThan(r.Min) {
		return fmt.Errorf("max price %s is below min price %s", r.Max, r.Min)
	}
	return nil
}

func (r FloatRange) roll(rng *rand.Rand, round product.RoundingFunc) decimal.Decimal {
	if !r.Enabled() {
		return product.Disabled
	}
	spread := r.Max.Sub(r.Min)
	return round(r.Min.Add(spread.Mul(decimal.NewFromFloat(rng.Float64()))))
}

// FloatSettings is the stored configuration of a float pricer
type FloatSettings struct {
	Buy  FloatRange `json:"buy"`
	Sell FloatRange `json:"sell"`
}

// Validate checks both directions
func (s FloatSettings) Validate() error {
	if err := s.Buy.Validate(); err != nil {
		return fmt.Errorf("buy: %w", err)
	}
	if err := s.Sell.Validate(); err != nil {
		return fmt.Errorf("sell: %w", err)
	}
	return nil
}

// FloatPricer picks a random price inside a range on every roll and keeps it
// until the next one.
type FloatPricer struct {
	mu       sync.RWMutex
	settings FloatSettings
	round    product.RoundingFunc
	buy      decimal.Decimal
	sell     decimal.Decimal
}

// NewFloatPricer creates a float pricer. Prices start at the range minimum
// until the first roll.
func NewFloatPricer(settings FloatSettings) (*FloatPricer, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid float pricer settings: %w", err)
	}
	p := &FloatPricer{settings: settings, round: noRounding}
	p.buy = startPrice(settings.Buy)
	p.sell = startPrice(settings.Sell)
	return p, nil
}

func startPrice(r FloatRange) decimal.Decimal {
	if !r.Enabled() {
		return product.Disabled
	}
	return r.Min
}

// Type returns PricingFloat
func (p *FloatPricer) Type() product.PricingType {
	return product.PricingFloat
}

// Roll draws new prices for both directions
func (p *FloatPricer) Roll(rng *rand.Rand) error {
	if rng == nil {
		return errors.New("random source is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buy = p.settings.Buy.roll(rng, p.round)
	p.sell = p.settings.Sell.roll(rng, p.round)
	return nil
}

// SetRounding rounds every later roll and the current prices
func (p *FloatPricer) SetRounding(round product.RoundingFunc) {
	if round == nil {
		round = noRounding
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.round = round
	if !p.buy.IsNegative() {
		p.buy = round(p.buy)
	}
	if !p.sell.IsNegative() {
		p.sell = round(p.sell)
	}
}

// Price returns the last rolled price for the trade direction
func (p *FloatPricer) Price(tradeType product.TradeType) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if tradeType == product.TradeBuy {
		return p.buy
	}
	return p.sell
}

// SetPrice pins the direction to a single price
func (p *FloatPricer) SetPrice(tradeType product.TradeType, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pinned := FloatRange{Min: price, Max: price}
	if tradeType == product.TradeBuy {
		p.settings.Buy = pinned
		p.buy = startPrice(pinned)
		return
	}
	p.settings.Sell = pinned
	p.sell = startPrice(pinned)
}

func (p *FloatPricer) BuyPrice() decimal.Decimal  { return p.Price(product.TradeBuy) }
func (p *FloatPricer) SellPrice() decimal.Decimal { return p.Price(product.TradeSell) }

// Settings returns the configured ranges
func (p *FloatPricer) Settings() FloatSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Placeholders renders the current prices
func (p *FloatPricer) Placeholders() placeholder.Replacer {
	return product.PriceTokens(p)
}

func noRounding(price decimal.Decimal) decimal.Decimal { return price }

var (
	_ product.Pricer         = (*FloatPricer)(nil)
	_ product.RoundingPricer = (*FloatPricer)(nil)
)

package product

import (
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/shopspring/decimal"
)

// Shop is the part of a shop a product depends on
type Shop interface {
	ID() string
	IsTransactionEnabled(tradeType TradeType) bool
}

// DiscountPolicy adjusts buy prices. Virtual products carry one bound to their shop.
type DiscountPolicy interface {
	DiscountAllowed() bool
	DiscountModifier() decimal.Decimal
}

// SellMultiplierResolver resolves the per-player sell price multiplier
type SellMultiplierResolver interface {
	SellMultiplier(player game.Player) decimal.Decimal
}

// LimitResolver tells how many units a player may still trade.
// A negative result means unlimited.
type LimitResolver interface {
	AvailableAmount(player game.Player, tradeType TradeType) int
}

// PlaceholderFunc renders the variant specific tokens of a product
type PlaceholderFunc func(player game.Player) placeholder.Replacer

// Option configures a Product at creation
type Option func(*Product)

// WithPricer replaces the default disabled flat pricer
func WithPricer(pricer Pricer) Option {
	return func(p *Product) {
		if pricer != nil {
			p.pricer = pricer
		}
	}
}

// WithDiscountPolicy attaches a discount policy used on buy prices
func WithDiscountPolicy(policy DiscountPolicy) Option {
	return func(p *Product) {
		p.discount = policy
	}
}

// WithSellMultiplier attaches a sell multiplier resolver used on sell prices
func WithSellMultiplier(resolver SellMultiplierResolver) Option {
	return func(p *Product) {
		p.sellMultiplier = resolver
	}
}

// WithLimits attaches a trade limit resolver
func WithLimits(limits LimitResolver) Option {
	return func(p *Product) {
		p.limits = limits
	}
}

// WithPlaceholders sets the variant specific placeholder stage
func WithPlaceholders(fn PlaceholderFunc) Option {
	return func(p *Product) {
		p.explicit = fn
	}
}

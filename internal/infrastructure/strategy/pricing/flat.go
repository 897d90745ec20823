package pricing

import (
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/shopspring/decimal"
)

// FlatSettings is the stored configuration of a flat pricer
type FlatSettings struct {
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// NewFlatPricer creates a flat pricer from settings
func NewFlatPricer(settings FlatSettings) *product.FlatPricer {
	return product.NewFlatPricer(settings.Buy, settings.Sell)
}

// FlatSettingsOf captures the prices of any pricer as flat settings
func FlatSettingsOf(p product.Pricer) FlatSettings {
	return FlatSettings{Buy: p.BuyPrice(), Sell: p.SellPrice()}
}

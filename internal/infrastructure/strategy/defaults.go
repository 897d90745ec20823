package strategy

import (
	"encoding/json"
	"fmt"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/infrastructure/strategy/pricing"
)

// NewRegistryWithDefaults creates a registry with the flat, dynamic and float
// pricers registered. Flat is the default.
func NewRegistryWithDefaults() (*PricerRegistry, error) {
	r := NewPricerRegistry()

	factories := []PricerFactory{
		flatFactory{},
		dynamicFactory{},
		floatFactory{},
	}
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}

	if err := r.SetDefault(product.PricingFlat); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeSettings unmarshals settings, treating empty input as the zero value
func decodeSettings(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

type flatFactory struct{}

func (flatFactory) Type() product.PricingType { return product.PricingFlat }
func (flatFactory) Description() string       { return "Fixed buy and sell prices" }

func (flatFactory) Build(raw json.RawMessage) (product.Pricer, error) {
	settings := pricing.FlatSettings{Buy: product.Disabled, Sell: product.Disabled}
	if err := decodeSettings(raw, &settings); err != nil {
		return nil, err
	}
	return pricing.NewFlatPricer(settings), nil
}

func (flatFactory) Encode(p product.Pricer) (json.RawMessage, error) {
	return json.Marshal(pricing.FlatSettingsOf(p))
}

type dynamicFactory struct{}

func (dynamicFactory) Type() product.PricingType { return product.PricingDynamic }
func (dynamicFactory) Description() string       { return "Prices follow net demand within bounds" }

func (dynamicFactory) Build(raw json.RawMessage) (product.Pricer, error) {
	var settings pricing.DynamicSettings
	if err := decodeSettings(raw, &settings); err != nil {
		return nil, err
	}
	return pricing.NewDynamicPricer(settings)
}

func (dynamicFactory) Encode(p product.Pricer) (json.RawMessage, error) {
	dp, ok := p.(*pricing.DynamicPricer)
	if !ok {
		return nil, fmt.Errorf("unexpected pricer %T", p)
	}
	return json.Marshal(dp.Settings())
}

type floatFactory struct{}

func (floatFactory) Type() product.PricingType { return product.PricingFloat }
func (floatFactory) Description() string       { return "Prices rolled at random within a range" }

func (floatFactory) Build(raw json.RawMessage) (product.Pricer, error) {
	var settings pricing.FloatSettings
	if err := decodeSettings(raw, &settings); err != nil {
		return nil, err
	}
	return pricing.NewFloatPricer(settings)
}

func (floatFactory) Encode(p product.Pricer) (json.RawMessage, error) {
	fp, ok := p.(*pricing.FloatPricer)
	if !ok {
		return nil, fmt.Errorf("unexpected pricer %T", p)
	}
	return json.Marshal(fp.Settings())
}

package catalog

import (
	"fmt"

	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/gameshop/backend/internal/infrastructure/config"
)

// CurrenciesFromConfig builds the configured currencies keyed by id
func CurrenciesFromConfig(cfgs []config.CurrencyConfig) (map[string]valueobject.Currency, error) {
	currencies := make(map[string]valueobject.Currency, len(cfgs))
	for _, c := range cfgs {
		currency, err := valueobject.NewDecimalCurrency(c.ID, c.Symbol, c.Precision, valueobject.RoundingMode(c.Rounding))
		if err != nil {
			return nil, fmt.Errorf("invalid currency configuration: %w", err)
		}
		currencies[currency.ID()] = currency
	}
	return currencies, nil
}

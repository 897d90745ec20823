package pricing

import (
	"math/rand/v2"
	"testing"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatPricer_Roll(t *testing.T) {
	p, err := NewFloatPricer(FloatSettings{
		Buy:  FloatRange{Min: d("10"), Max: d("20")},
		Sell: FloatRange{Min: d("1"), Max: d("5")},
	})
	require.NoError(t, err)
	assert.Equal(t, product.PricingFloat, p.Type())

	t.Run("starts at range minimum", func(t *testing.T) {
		assert.True(t, d("10").Equal(p.BuyPrice()))
		assert.True(t, d("1").Equal(p.SellPrice()))
	})

	t.Run("rolled prices stay in range", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		for i := 0; i < 200; i++ {
			require.NoError(t, p.Roll(rng))
			assert.True(t, p.BuyPrice().GreaterThanOrEqual(d("10")))
			assert.True(t, p.BuyPrice().LessThanOrEqual(d("20")))
			assert.True(t, p.SellPrice().GreaterThanOrEqual(d("1")))
			assert.True(t, p.SellPrice().LessThanOrEqual(d("5")))
		}
	})

	t.Run("prices are stable between rolls", func(t *testing.T) {
		first := p.BuyPrice()
		assert.True(t, first.Equal(p.BuyPrice()))
	})

	t.Run("nil random source", func(t *testing.T) {
		assert.Error(t, p.Roll(nil))
	})
}

func TestFloatPricer_DisabledAndPinned(t *testing.T) {
	p, err := NewFloatPricer(FloatSettings{
		Buy:  FloatRange{Min: d("10"), Max: d("20")},
		Sell: FloatRange{Min: product.Disabled, Max: product.Disabled},
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(7, 7))
	require.NoError(t, p.Roll(rng))
	assert.True(t, p.SellPrice().IsNegative())

	p.SetPrice(product.TradeBuy, d("12"))
	require.NoError(t, p.Roll(rng))
	assert.True(t, d("12").Equal(p.BuyPrice()))
	assert.True(t, d("12").Equal(p.Settings().Buy.Max))

	p.SetPrice(product.TradeSell, d("3"))
	assert.True(t, d("3").Equal(p.SellPrice()))
}

func TestNewFloatPricer_InvalidRange(t *testing.T) {
	_, err := NewFloatPricer(FloatSettings{
		Buy:  FloatRange{Min: d("20"), Max: d("10")},
		Sell: FloatRange{Min: d("1"), Max: d("2")},
	})
	assert.Error(t, err)
}

func TestFlatSettings(t *testing.T) {
	p := NewFlatPricer(FlatSettings{Buy: d("3"), Sell: d("1")})
	assert.Equal(t, product.PricingFlat, p.Type())

	s := FlatSettingsOf(p)
	assert.True(t, d("3").Equal(s.Buy))
	assert.True(t, d("1").Equal(s.Sell))
}

func TestFloatPricer_RollsCurrencyRoundedPrices(t *testing.T) {
	p, err := NewFloatPricer(FloatSettings{
		Buy:  FloatRange{Min: d("10"), Max: d("10.004")},
		Sell: FloatRange{Min: d("10"), Max: d("10.004")},
	})
	require.NoError(t, err)
	p.SetRounding(valueobject.MustDecimalCurrency("coins", "$", 2).FineValue)

	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Roll(rng))
		assert.True(t, d("10").Equal(p.BuyPrice()), p.BuyPrice().String())
		assert.True(t, p.SellPrice().LessThanOrEqual(p.BuyPrice()))
	}
}

func TestFloatPricer_SetRoundingRoundsCurrentPrices(t *testing.T) {
	p, err := NewFloatPricer(FloatSettings{
		Buy:  FloatRange{Min: d("1.236"), Max: d("2")},
		Sell: FloatRange{Min: product.Disabled, Max: product.Disabled},
	})
	require.NoError(t, err)

	p.SetRounding(valueobject.MustDecimalCurrency("coins", "$", 2).FineValue)
	assert.True(t, d("1.24").Equal(p.BuyPrice()))
	assert.True(t, p.SellPrice().IsNegative())

	p.SetRounding(nil)
	rng := rand.New(rand.NewPCG(5, 6))
	require.NoError(t, p.Roll(rng))
	assert.True(t, p.BuyPrice().GreaterThanOrEqual(d("1.236")))
}

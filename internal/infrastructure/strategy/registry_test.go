package strategy

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/infrastructure/strategy/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFactory struct {
	t product.PricingType
}

func (f mockFactory) Type() product.PricingType { return f.t }
func (f mockFactory) Description() string       { return "Mock pricer" }

func (f mockFactory) Build(json.RawMessage) (product.Pricer, error) {
	return product.NewDisabledPricer(), nil
}

func (f mockFactory) Encode(product.Pricer) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func TestPricerRegistry_Register(t *testing.T) {
	r := NewPricerRegistry()

	require.NoError(t, r.Register(mockFactory{t: "mock"}))

	err := r.Register(mockFactory{t: "mock"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	f, err := r.Get("mock")
	require.NoError(t, err)
	assert.Equal(t, product.PricingType("mock"), f.Type())

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPricerRegistry_Default(t *testing.T) {
	r := NewPricerRegistry()

	_, err := r.Get("")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, r.SetDefault("mock"), shared.ErrNotFound)

	require.NoError(t, r.Register(mockFactory{t: "mock"}))
	require.NoError(t, r.SetDefault("mock"))

	f, err := r.Get("")
	require.NoError(t, err)
	assert.Equal(t, product.PricingType("mock"), f.Type())

	require.NoError(t, r.Unregister("mock"))
	_, err = r.Get("")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, r.Unregister("mock"), shared.ErrNotFound)
}

func TestNewRegistryWithDefaults(t *testing.T) {
	r, err := NewRegistryWithDefaults()
	require.NoError(t, err)

	infos := r.List()
	require.Len(t, infos, 3)
	assert.Equal(t, product.PricingDynamic, infos[0].Type)
	assert.Equal(t, product.PricingFlat, infos[1].Type)
	assert.True(t, infos[1].Default)
	assert.Equal(t, product.PricingFloat, infos[2].Type)
}

func TestPricerRegistry_BuildAndEncode(t *testing.T) {
	r, err := NewRegistryWithDefaults()
	require.NoError(t, err)

	t.Run("flat from settings", func(t *testing.T) {
		p, err := r.Build(product.PricingFlat, json.RawMessage(`{"buy":"10.5","sell":"2"}`))
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("10.5").Equal(p.BuyPrice()))

		typ, raw, err := r.Encode(p)
		require.NoError(t, err)
		assert.Equal(t, product.PricingFlat, typ)
		assert.JSONEq(t, `{"buy":"10.5","sell":"2"}`, string(raw))
	})

	t.Run("empty settings disable flat pricer", func(t *testing.T) {
		p, err := r.Build("", nil)
		require.NoError(t, err)
		assert.True(t, p.BuyPrice().IsNegative())
		assert.True(t, p.SellPrice().IsNegative())
	})

	t.Run("dynamic keeps demand", func(t *testing.T) {
		settings := `{"buy":{"initial":"10","min":"5","max":"20","step":"1"},"sell":{"initial":"-1","min":"0","max":"0","step":"0"},"demand":3}`
		p, err := r.Build(product.PricingDynamic, json.RawMessage(settings))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(13).Equal(p.BuyPrice()))

		dp, ok := p.(*pricing.DynamicPricer)
		require.True(t, ok)
		dp.RecordTransaction(product.TradeBuy, 2)

		_, raw, err := r.Encode(p)
		require.NoError(t, err)

		restored, err := r.Build(product.PricingDynamic, raw)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(15).Equal(restored.BuyPrice()))
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := r.Build(product.PricingFloat, json.RawMessage(`{"buy":{"min":"5","max":"1"}}`))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = r.Build(product.PricingDynamic, json.RawMessage(`not json`))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := r.Build("auction", nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPricerRegistry_ConcurrentAccess(t *testing.T) {
	r, err := NewRegistryWithDefaults()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.List()
			_, _ = r.Get(product.PricingFlat)
		}()
	}
	wg.Wait()
}

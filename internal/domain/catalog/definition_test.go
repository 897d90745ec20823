package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemProduct(shopID, id string) ProductDefinition {
	return ProductDefinition{
		ShopID:   shopID,
		ID:       id,
		Currency: "coins",
		Content:  ContentSpec{Kind: product.ContentItem, Data: []byte(`{"item":"stone","amount":1}`)},
		Pricer:   PricerSpec{Type: product.PricingFlat},
	}
}

func TestShopDefinition_Normalize(t *testing.T) {
	def := NewShopDefinition(" Blocks ", shop.KindVirtual, "Blocks")
	def.Products = []ProductDefinition{{ID: "Stone ", Currency: "Coins"}}
	def.Normalize()

	assert.Equal(t, "blocks", def.ID)
	assert.Equal(t, "blocks", def.Products[0].ShopID)
	assert.Equal(t, "stone", def.Products[0].ID)
	assert.Equal(t, "coins", def.Products[0].Currency)
	assert.Equal(t, "blocks/stone", def.Products[0].Key())
	assert.True(t, def.IsTransactionEnabled(product.TradeBuy))
	assert.True(t, def.IsTransactionEnabled(product.TradeSell))
}

func TestShopDefinition_Validate(t *testing.T) {
	valid := func() ShopDefinition {
		def := NewShopDefinition("blocks", shop.KindVirtual, "Blocks")
		def.Products = []ProductDefinition{itemProduct("blocks", "stone")}
		return *def
	}

	tests := []struct {
		name    string
		mutate  func(d *ShopDefinition)
		wantErr error
	}{
		{name: "valid", mutate: func(d *ShopDefinition) {}},
		{name: "missing id", mutate: func(d *ShopDefinition) { d.ID = " " }, wantErr: shared.ErrInvalidInput},
		{name: "unknown kind", mutate: func(d *ShopDefinition) { d.Kind = "market" }, wantErr: shared.ErrInvalidInput},
		{name: "chest without owner", mutate: func(d *ShopDefinition) { d.Kind = shop.KindChest }, wantErr: shared.ErrInvalidInput},
		{name: "admin chest", mutate: func(d *ShopDefinition) { d.Kind = shop.KindChest; d.Admin = true }},
		{name: "owned chest", mutate: func(d *ShopDefinition) { d.Kind = shop.KindChest; d.Owner = uuid.New() }},
		{name: "chest with discount", mutate: func(d *ShopDefinition) {
			d.Kind = shop.KindChest
			d.Admin = true
			d.Discounts = []shop.Discount{{Percent: decimal.NewFromInt(10)}}
		}, wantErr: shared.ErrInvalidInput},
		{name: "bad discount", mutate: func(d *ShopDefinition) {
			d.Discounts = []shop.Discount{{Percent: decimal.NewFromInt(10), From: 2 * time.Hour, To: time.Hour}}
		}, wantErr: shared.ErrInvalidInput},
		{name: "foreign product", mutate: func(d *ShopDefinition) {
			d.Products = append(d.Products, itemProduct("tools", "axe"))
		}, wantErr: shared.ErrInvalidInput},
		{name: "duplicate product", mutate: func(d *ShopDefinition) {
			d.Products = append(d.Products, itemProduct("blocks", "STONE"))
		}, wantErr: shared.ErrAlreadyExists},
		{name: "unknown content", mutate: func(d *ShopDefinition) {
			d.Products[0].Content.Kind = "potion"
		}, wantErr: shared.ErrInvalidInput},
		{name: "missing currency", mutate: func(d *ShopDefinition) {
			d.Products[0].Currency = ""
		}, wantErr: shared.ErrInvalidInput},
		{name: "dummy without currency", mutate: func(d *ShopDefinition) {
			d.Products[0].Currency = ""
			d.Products[0].Content = ContentSpec{Kind: product.ContentDummy}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid()
			tt.mutate(&def)

			err := def.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

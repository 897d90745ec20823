package catalog

import (
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/shopspring/decimal"
)

// ShopResponse represents a shop in API responses
type ShopResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	BuyEnabled   bool   `json:"buy_enabled"`
	SellEnabled  bool   `json:"sell_enabled"`
	ProductCount int    `json:"product_count"`
	// ActiveDiscount is the percent currently taken off buy prices
	ActiveDiscount *decimal.Decimal `json:"active_discount,omitempty"`
	OwnerName      string           `json:"owner_name,omitempty"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ShopID          string          `json:"shop_id"`
	ID              string          `json:"id"`
	ContentKind     string          `json:"content_kind"`
	Reference       string          `json:"reference"`
	UnitAmount      int             `json:"unit_amount"`
	Currency        string          `json:"currency"`
	PricingType     string          `json:"pricing_type"`
	BuyPrice        decimal.Decimal `json:"buy_price"`
	SellPrice       decimal.Decimal `json:"sell_price"`
	Buyable         bool            `json:"buyable"`
	Sellable        bool            `json:"sellable"`
	Valid           bool            `json:"valid"`
	DiscountAllowed bool            `json:"discount_allowed"`
}

// ToShopResponse converts a shop to its response form
func ToShopResponse(s shop.Shop) ShopResponse {
	resp := ShopResponse{
		ID:           s.ID(),
		Kind:         s.Kind().String(),
		Name:         s.Name(),
		BuyEnabled:   s.IsTransactionEnabled(product.TradeBuy),
		SellEnabled:  s.IsTransactionEnabled(product.TradeSell),
		ProductCount: len(s.Products()),
	}
	switch v := s.(type) {
	case *shop.VirtualShop:
		active := v.ActiveDiscount()
		resp.ActiveDiscount = &active
	case *shop.ChestShop:
		resp.OwnerName = v.OwnerName()
	}
	return resp
}

// ToProductResponse converts a product to its response form. Prices are
// the base prices seen by a player without rank multipliers.
func ToProductResponse(p *product.Product) ProductResponse {
	packer := p.Packer()
	resp := ProductResponse{
		ShopID:      p.Shop().ID(),
		ID:          p.ID(),
		ContentKind: p.Content().Kind().String(),
		Reference:   packer.Reference(),
		UnitAmount:  p.UnitAmount(),
		Currency:    p.Currency().ID(),
		PricingType: p.Pricer().Type().String(),
		BuyPrice:    p.PriceBuy(nil),
		SellPrice:   p.PriceSell(nil),
		Buyable:     p.IsBuyable(),
		Sellable:    p.IsSellable(),
		Valid:       p.IsValid(),
	}
	if policy := p.DiscountPolicy(); policy != nil {
		resp.DiscountAllowed = policy.DiscountAllowed()
	}
	return resp
}

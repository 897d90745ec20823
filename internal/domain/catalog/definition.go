// Package catalog holds the stored definitions shops and products are
// rebuilt from on startup and on reload.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/gameshop/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// ContentSpec is the stored form of a product's handler and packer
type ContentSpec struct {
	Kind product.ContentKind `json:"kind"`
	Data json.RawMessage     `json:"data,omitempty"`
}

// PricerSpec is the stored form of a pricer: its type name plus the
// settings understood by that type
type PricerSpec struct {
	Type     product.PricingType `json:"type"`
	Settings json.RawMessage     `json:"settings,omitempty"`
}

// ProductDefinition describes one product of a shop
type ProductDefinition struct {
	ShopID   string      `json:"shop_id,omitempty"`
	ID       string      `json:"id"`
	Currency string      `json:"currency,omitempty"`
	Position int         `json:"position,omitempty"`
	Content  ContentSpec `json:"content"`
	Pricer   PricerSpec  `json:"pricer"`
	// Limits are optional, nil means unlimited
	Limits          *stock.Limits `json:"limits,omitempty"`
	DiscountAllowed bool          `json:"discount_allowed,omitempty"`
}

// TradeLimits returns the limits of the product, never nil
func (d ProductDefinition) TradeLimits() stock.Limits {
	if d.Limits == nil {
		return stock.NoLimits()
	}
	return *d.Limits
}

// Key returns the "<shop>/<product>" key also used by product.Product
func (d ProductDefinition) Key() string {
	return d.ShopID + "/" + d.ID
}

// Normalize lowercases identifiers the way the domain objects do
func (d *ProductDefinition) Normalize() {
	d.ShopID = normalizeID(d.ShopID)
	d.ID = normalizeID(d.ID)
	d.Currency = normalizeID(d.Currency)
}

// Validate checks the definition can be turned into a product
func (d ProductDefinition) Validate() error {
	if normalizeID(d.ShopID) == "" || normalizeID(d.ID) == "" {
		return fmt.Errorf("%w: product requires shop and id", shared.ErrInvalidInput)
	}
	if !d.Content.Kind.IsValid() {
		return fmt.Errorf("%w: product %s has unknown content kind %q", shared.ErrInvalidInput, d.ID, d.Content.Kind)
	}
	if d.Content.Kind != product.ContentDummy && d.Currency == "" {
		return fmt.Errorf("%w: product %s requires a currency", shared.ErrInvalidInput, d.ID)
	}
	return nil
}

// ShopDefinition describes a shop and its products
type ShopDefinition struct {
	ID          string          `json:"id"`
	Kind        shop.Kind       `json:"kind"`
	Name        string          `json:"name,omitempty"`
	BuyEnabled  bool            `json:"buy_enabled"`
	SellEnabled bool            `json:"sell_enabled"`
	Discounts   []shop.Discount `json:"discounts,omitempty"`

	// Chest shops only
	Owner     uuid.UUID `json:"owner,omitempty"`
	OwnerName string    `json:"owner_name,omitempty"`
	Admin     bool      `json:"admin,omitempty"`

	Products []ProductDefinition `json:"products"`
}

// NewShopDefinition returns a definition with both trade directions enabled
func NewShopDefinition(id string, kind shop.Kind, name string) *ShopDefinition {
	return &ShopDefinition{
		ID:          normalizeID(id),
		Kind:        kind,
		Name:        name,
		BuyEnabled:  true,
		SellEnabled: true,
	}
}

// Normalize lowercases the shop id and propagates it to the products
func (d *ShopDefinition) Normalize() {
	d.ID = normalizeID(d.ID)
	for i := range d.Products {
		d.Products[i].ShopID = d.ID
		d.Products[i].Normalize()
	}
}

// Validate checks the shop and all of its products
func (d ShopDefinition) Validate() error {
	if normalizeID(d.ID) == "" {
		return fmt.Errorf("%w: shop id is required", shared.ErrInvalidInput)
	}
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: shop %s has unknown kind %q", shared.ErrInvalidInput, d.ID, d.Kind)
	}
	if d.Kind == shop.KindChest && d.Owner == uuid.Nil && !d.Admin {
		return fmt.Errorf("%w: chest shop %s requires an owner", shared.ErrInvalidInput, d.ID)
	}
	if d.Kind != shop.KindVirtual && len(d.Discounts) > 0 {
		return fmt.Errorf("%w: only virtual shops have discounts", shared.ErrInvalidInput)
	}
	for _, discount := range d.Discounts {
		if err := discount.Validate(); err != nil {
			return fmt.Errorf("%w: shop %s: %v", shared.ErrInvalidInput, d.ID, err)
		}
	}

	seen := make(map[string]struct{}, len(d.Products))
	for _, p := range d.Products {
		if normalizeID(p.ShopID) != normalizeID(d.ID) {
			return fmt.Errorf("%w: product %s belongs to shop %s", shared.ErrInvalidInput, p.ID, p.ShopID)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		id := normalizeID(p.ID)
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: product %s defined twice in shop %s", shared.ErrAlreadyExists, id, d.ID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// IsTransactionEnabled mirrors the shop switch for one direction
func (d ShopDefinition) IsTransactionEnabled(tradeType product.TradeType) bool {
	if tradeType == product.TradeBuy {
		return d.BuyEnabled
	}
	return d.SellEnabled
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

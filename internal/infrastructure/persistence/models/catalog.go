// Package models holds the GORM persistence models of the catalog.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gameshop/backend/internal/domain/catalog"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/gameshop/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// All returns every model managed by AutoMigrate
func All() []any {
	return []any{&ShopModel{}, &ProductModel{}}
}

// ShopModel is the persistence model for a shop definition.
type ShopModel struct {
	ID          string    `gorm:"type:varchar(64);primaryKey"`
	Kind        string    `gorm:"type:varchar(16);not null"`
	Name        string    `gorm:"type:varchar(200);not null"`
	BuyEnabled  bool      `gorm:"not null"`
	SellEnabled bool      `gorm:"not null"`
	Discounts   string    `gorm:"type:text"`
	Owner       uuid.UUID `gorm:"type:varchar(36)"`
	OwnerName   string    `gorm:"type:varchar(64)"`
	Admin       bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	Products []ProductModel `gorm:"foreignKey:ShopID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a shop definition.
func (m *ShopModel) ToDomain() (*catalog.ShopDefinition, error) {
	def := &catalog.ShopDefinition{
		ID:          m.ID,
		Kind:        shop.Kind(m.Kind),
		Name:        m.Name,
		BuyEnabled:  m.BuyEnabled,
		SellEnabled: m.SellEnabled,
		Owner:       m.Owner,
		OwnerName:   m.OwnerName,
		Admin:       m.Admin,
	}
	if m.Discounts != "" {
		if err := json.Unmarshal([]byte(m.Discounts), &def.Discounts); err != nil {
			return nil, fmt.Errorf("shop %s: decode discounts: %w", m.ID, err)
		}
	}

	def.Products = make([]catalog.ProductDefinition, 0, len(m.Products))
	for i := range m.Products {
		def.Products = append(def.Products, m.Products[i].ToDomain())
	}
	return def, nil
}

// FromDomain populates the persistence model from a shop definition,
// products included.
func (m *ShopModel) FromDomain(def *catalog.ShopDefinition) error {
	m.ID = def.ID
	m.Kind = string(def.Kind)
	m.Name = def.Name
	m.BuyEnabled = def.BuyEnabled
	m.SellEnabled = def.SellEnabled
	m.Owner = def.Owner
	m.OwnerName = def.OwnerName
	m.Admin = def.Admin
	m.Discounts = ""
	if len(def.Discounts) > 0 {
		data, err := json.Marshal(def.Discounts)
		if err != nil {
			return fmt.Errorf("shop %s: encode discounts: %w", def.ID, err)
		}
		m.Discounts = string(data)
	}

	m.Products = make([]ProductModel, len(def.Products))
	for i := range def.Products {
		m.Products[i].FromDomain(&def.Products[i])
	}
	return nil
}

// ProductModel is the persistence model for a product definition.
type ProductModel struct {
	ShopID          string    `gorm:"type:varchar(64);primaryKey"`
	ID              string    `gorm:"type:varchar(64);primaryKey"`
	Position        int       `gorm:"not null"`
	Currency        string    `gorm:"type:varchar(32);not null"`
	ContentKind     string    `gorm:"type:varchar(16);not null"`
	ContentData     string    `gorm:"type:text"`
	PricerType      string    `gorm:"type:varchar(32);not null"`
	PricerSettings  string    `gorm:"type:text"`
	GlobalBuyLimit  int       `gorm:"not null"`
	GlobalSellLimit int       `gorm:"not null"`
	PlayerBuyLimit  int       `gorm:"not null"`
	PlayerSellLimit int       `gorm:"not null"`
	RestockSeconds  int64     `gorm:"not null"`
	DiscountAllowed bool      `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "shop_products"
}

// ToDomain converts the persistence model to a product definition.
func (m *ProductModel) ToDomain() catalog.ProductDefinition {
	return catalog.ProductDefinition{
		ShopID:   m.ShopID,
		ID:       m.ID,
		Currency: m.Currency,
		Position: m.Position,
		Content: catalog.ContentSpec{
			Kind: product.ContentKind(m.ContentKind),
			Data: rawJSON(m.ContentData),
		},
		Pricer: catalog.PricerSpec{
			Type:     product.PricingType(m.PricerType),
			Settings: rawJSON(m.PricerSettings),
		},
		Limits:          m.limits(),
		DiscountAllowed: m.DiscountAllowed,
	}
}

func (m *ProductModel) limits() *stock.Limits {
	l := stock.Limits{
		GlobalBuy:  m.GlobalBuyLimit,
		GlobalSell: m.GlobalSellLimit,
		PlayerBuy:  m.PlayerBuyLimit,
		PlayerSell: m.PlayerSellLimit,
		Restock:    time.Duration(m.RestockSeconds) * time.Second,
	}
	if l.IsUnlimited() {
		return nil
	}
	return &l
}

// FromDomain populates the persistence model from a product definition.
func (m *ProductModel) FromDomain(def *catalog.ProductDefinition) {
	m.ShopID = def.ShopID
	m.ID = def.ID
	m.Position = def.Position
	m.Currency = def.Currency
	m.ContentKind = string(def.Content.Kind)
	m.ContentData = string(def.Content.Data)
	m.PricerType = string(def.Pricer.Type)
	m.PricerSettings = string(def.Pricer.Settings)
	limits := def.TradeLimits()
	m.GlobalBuyLimit = limits.GlobalBuy
	m.GlobalSellLimit = limits.GlobalSell
	m.PlayerBuyLimit = limits.PlayerBuy
	m.PlayerSellLimit = limits.PlayerSell
	m.RestockSeconds = int64(limits.Restock / time.Second)
	m.DiscountAllowed = def.DiscountAllowed
}

// ProductModelFromDomain creates a new persistence model from a product definition.
func ProductModelFromDomain(def *catalog.ProductDefinition) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(def)
	return m
}

func rawJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

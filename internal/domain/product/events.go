package product

import (
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypePriceChanged  = "ProductPriceChanged"
	EventTypeProductTraded = "ProductTraded"
)

// PriceChangedEvent is raised when an administrator sets a product price
type PriceChangedEvent struct {
	shared.BaseDomainEvent
	ShopID    string          `json:"shop_id"`
	ProductID string          `json:"product_id"`
	TradeType TradeType       `json:"trade_type"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

// NewPriceChangedEvent creates a new PriceChangedEvent
func NewPriceChangedEvent(shopID, productID string, tradeType TradeType, oldPrice, newPrice decimal.Decimal) *PriceChangedEvent {
	return &PriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePriceChanged, AggregateTypeProduct, shopID+"/"+productID),
		ShopID:          shopID,
		ProductID:       productID,
		TradeType:       tradeType,
		OldPrice:        oldPrice,
		NewPrice:        newPrice,
	}
}

// TradedEvent is raised after a completed buy or sell
type TradedEvent struct {
	shared.BaseDomainEvent
	ShopID    string          `json:"shop_id"`
	ProductID string          `json:"product_id"`
	PlayerID  uuid.UUID       `json:"player_id"`
	TradeType TradeType       `json:"trade_type"`
	Units     int             `json:"units"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// NewTradedEvent creates a new TradedEvent
func NewTradedEvent(p *Product, playerID uuid.UUID, tradeType TradeType, units int, total decimal.Decimal) *TradedEvent {
	shopID := p.Shop().ID()
	return &TradedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductTraded, AggregateTypeProduct, shopID+"/"+p.ID()),
		ShopID:          shopID,
		ProductID:       p.ID(),
		PlayerID:        playerID,
		TradeType:       tradeType,
		Units:           units,
		Total:           total,
		Currency:        p.Currency().ID(),
	}
}

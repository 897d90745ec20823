package trade

import (
	"context"
	"fmt"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// TradeRecorder counts completed trades against the stock limits and feeds
// demand driven pricers
type TradeRecorder struct {
	tracker  *stock.Tracker
	products ProductFinder
	logger   *zap.Logger
}

// NewTradeRecorder creates the ProductTraded handler
func NewTradeRecorder(tracker *stock.Tracker, products ProductFinder, logger *zap.Logger) *TradeRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TradeRecorder{tracker: tracker, products: products, logger: logger.Named("trade_recorder")}
}

// EventTypes returns the handled event types
func (h *TradeRecorder) EventTypes() []string {
	return []string{product.EventTypeProductTraded}
}

// Handle records one trade
func (h *TradeRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	traded, ok := event.(*product.TradedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	key := traded.ShopID + "/" + traded.ProductID
	if h.tracker != nil {
		if err := h.tracker.Record(key, traded.PlayerID, traded.TradeType, traded.Units); err != nil {
			return fmt.Errorf("failed to record trade of %s: %w", key, err)
		}
	}

	p, err := h.products.Product(traded.ShopID, traded.ProductID)
	if err != nil {
		// the product was removed by a reload in between
		h.logger.Debug("Traded product is gone", zap.String("product", key))
		return nil
	}
	if demand, ok := p.Pricer().(product.DemandTracker); ok {
		demand.RecordTransaction(traded.TradeType, traded.Units)
	}
	return nil
}

var _ shared.EventHandler = (*TradeRecorder)(nil)

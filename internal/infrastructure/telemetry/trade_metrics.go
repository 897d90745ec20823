package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrShopID    = attribute.Key("shop_id")
	AttrProductID = attribute.Key("product_id")
	AttrTradeType = attribute.Key("trade_type")
	AttrCurrency  = attribute.Key("currency")
)

// ErrMeterNil is returned when no meter is given
var ErrMeterNil = errors.New("meter cannot be nil")

// TradeMetrics counts completed trades. It subscribes to ProductTraded so the
// trade service stays free of metric calls.
type TradeMetrics struct {
	trades metric.Int64Counter
	units  metric.Int64Counter
	value  metric.Float64Counter
}

// NewTradeMetrics registers the trade instruments on meter
func NewTradeMetrics(meter metric.Meter) (*TradeMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	trades, err := meter.Int64Counter("shop_trades_total",
		metric.WithDescription("Total number of completed trades"),
		metric.WithUnit("{trades}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create shop_trades_total: %w", err)
	}
	units, err := meter.Int64Counter("shop_trade_units_total",
		metric.WithDescription("Total number of product units traded"),
		metric.WithUnit("{units}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create shop_trade_units_total: %w", err)
	}
	value, err := meter.Float64Counter("shop_trade_value_total",
		metric.WithDescription("Total currency moved by trades"))
	if err != nil {
		return nil, fmt.Errorf("failed to create shop_trade_value_total: %w", err)
	}

	return &TradeMetrics{trades: trades, units: units, value: value}, nil
}

// EventTypes returns the handled event types
func (m *TradeMetrics) EventTypes() []string {
	return []string{product.EventTypeProductTraded}
}

// Handle records one trade
func (m *TradeMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	traded, ok := event.(*product.TradedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	attrs := metric.WithAttributes(
		AttrShopID.String(traded.ShopID),
		AttrProductID.String(traded.ProductID),
		AttrTradeType.String(traded.TradeType.String()),
	)
	m.trades.Add(ctx, 1, attrs)
	m.units.Add(ctx, int64(traded.Units), attrs)

	total, _ := traded.Total.Float64()
	m.value.Add(ctx, total, metric.WithAttributes(
		AttrShopID.String(traded.ShopID),
		AttrTradeType.String(traded.TradeType.String()),
		AttrCurrency.String(traded.Currency),
	))
	return nil
}

var _ shared.EventHandler = (*TradeMetrics)(nil)

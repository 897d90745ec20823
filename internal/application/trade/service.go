// Package trade runs buy, sell and sell-all transactions against live
// products, moving money through the economy and content through packers.
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Economy holds player balances per currency
type Economy interface {
	Balance(ctx context.Context, playerID uuid.UUID, currency string) (decimal.Decimal, error)
	Deposit(ctx context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) error
}

// ProductFinder resolves live products
type ProductFinder interface {
	Product(shopID, productID string) (*product.Product, error)
}

// Restocks reports when the per player counter of a product resets
type Restocks interface {
	RestockIn(productKey string, playerID uuid.UUID, tradeType product.TradeType) time.Duration
}

// stockedShop is implemented by shops trading from a container with an owner
// on the other side of the trade
type stockedShop interface {
	Stock() game.Inventory
	Owner() uuid.UUID
	IsAdmin() bool
}

// Receipt describes a completed trade
type Receipt struct {
	ShopID    string            `json:"shop_id"`
	ProductID string            `json:"product_id"`
	TradeType product.TradeType `json:"trade_type"`
	Units     int               `json:"units"`
	Total     decimal.Decimal   `json:"total"`
	Currency  string            `json:"currency"`
	Balance   decimal.Decimal   `json:"balance"`
}

// Service executes trades. Trades touching the same shop or the same player
// run one at a time, from the first check to the last payment.
type Service struct {
	products  ProductFinder
	economy   Economy
	restocks  Restocks
	publisher shared.EventPublisher
	locks     *keyedLocks
	logger    *zap.Logger
}

// NewService creates a trade service. restocks may be nil.
func NewService(products ProductFinder, economy Economy, restocks Restocks, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:  products,
		economy:   economy,
		restocks:  restocks,
		publisher: publisher,
		locks:     newKeyedLocks(),
		logger:    logger.Named("trade"),
	}
}

// lock serializes trades per shop and per player. Shop keys always come first.
func (s *Service) lock(player game.Player, shopID string) (func(), error) {
	if player == nil {
		return nil, fmt.Errorf("%w: player is required", shared.ErrInvalidInput)
	}
	return s.locks.Lock("shop:"+shopID, "player:"+player.ID().String()), nil
}

// lookup resolves the product and runs the checks shared by every trade
func (s *Service) lookup(shopID, productID string, tradeType product.TradeType) (*product.Product, error) {
	p, err := s.products.Product(shopID, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsValid() {
		return nil, shared.ErrProductInvalid
	}
	if !p.Shop().IsTransactionEnabled(tradeType) {
		return nil, shared.ErrTradeDisabled
	}
	if !p.IsTradeable(tradeType) {
		return nil, shared.ErrNotTradeable
	}
	return p, nil
}

func (s *Service) checkLimit(p *product.Product, player game.Player, tradeType product.TradeType, units int) error {
	available := p.AvailableAmount(player, tradeType)
	if available < 0 || units <= available {
		return nil
	}
	return s.limitReached(p, player, tradeType, available)
}

func (s *Service) limitReached(p *product.Product, player game.Player, tradeType product.TradeType, available int) error {
	msg := fmt.Sprintf("Only %d more units of %s can be traded", available, p.ID())
	if s.restocks != nil {
		if wait := s.restocks.RestockIn(p.Key(), player.ID(), tradeType); wait > 0 {
			msg += fmt.Sprintf(", restocks in %s", wait.Round(time.Second))
		}
	}
	return shared.ErrLimitReached.Withf("%s", msg)
}

// spaceUnits converts the raw free space of the inventory into whole units
func spaceUnits(p *product.Product, inv game.Inventory) int {
	unit := p.UnitAmount()
	if unit <= 0 {
		return 0
	}
	return p.CountSpaceIn(inv) / unit
}

func total(p *product.Product, unitPrice decimal.Decimal, units int) decimal.Decimal {
	return p.Currency().FineValue(unitPrice.Mul(decimal.NewFromInt(int64(units))))
}

// Buy sells units of a product to the player
func (s *Service) Buy(ctx context.Context, player game.Player, shopID, productID string, units int) (*Receipt, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", shared.ErrInvalidInput)
	}
	unlock, err := s.lock(player, shopID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.lookup(shopID, productID, product.TradeBuy)
	if err != nil {
		return nil, err
	}
	if err := s.checkLimit(p, player, product.TradeBuy, units); err != nil {
		return nil, err
	}
	if spaceUnits(p, player.Inventory()) < units {
		return nil, shared.ErrNotEnoughSpace
	}

	stocked, container := s.container(p)
	if container != nil {
		if taken := p.TakeIn(container, units); taken < units {
			p.DeliveryIn(container, taken)
			return nil, shared.ErrNotEnoughItems.Withf("Shop is out of stock")
		}
	}
	restock := func() {
		if container != nil {
			p.DeliveryIn(container, units)
		}
	}

	price := total(p, p.PriceBuy(player), units)
	currency := p.Currency().ID()
	if err := s.economy.Withdraw(ctx, player.ID(), currency, price); err != nil {
		restock()
		return nil, s.balanceError(err)
	}
	if stocked != nil && !stocked.IsAdmin() {
		if err := s.economy.Deposit(ctx, stocked.Owner(), currency, price); err != nil {
			s.refund(ctx, player.ID(), currency, price)
			restock()
			return nil, fmt.Errorf("failed to pay shop owner: %w", err)
		}
	}

	p.Delivery(player, units)
	return s.complete(ctx, p, player, product.TradeBuy, units, price)
}

// Sell buys units of a product from the player
func (s *Service) Sell(ctx context.Context, player game.Player, shopID, productID string, units int) (*Receipt, error) {
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", shared.ErrInvalidInput)
	}
	unlock, err := s.lock(player, shopID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.lookup(shopID, productID, product.TradeSell)
	if err != nil {
		return nil, err
	}
	if err := s.checkLimit(p, player, product.TradeSell, units); err != nil {
		return nil, err
	}
	if p.CountUnits(player) < units {
		return nil, shared.ErrNotEnoughItems
	}
	return s.sell(ctx, p, player, units, total(p, p.PriceSell(player), units))
}

// SellAll sells every unit the player holds, capped by the trade limit
func (s *Service) SellAll(ctx context.Context, player game.Player, shopID, productID string) (*Receipt, error) {
	unlock, err := s.lock(player, shopID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.lookup(shopID, productID, product.TradeSell)
	if err != nil {
		return nil, err
	}

	has := p.CountUnits(player)
	if has == 0 {
		return nil, shared.ErrNotEnoughItems
	}
	units := has
	if can := p.AvailableAmount(player, product.TradeSell); can >= 0 {
		units = min(has, can)
	}
	if units == 0 {
		return nil, s.limitReached(p, player, product.TradeSell, 0)
	}
	return s.sell(ctx, p, player, units, p.PriceSellAll(player))
}

// sell moves units from the player to the shop and pays for them. Every step
// is undone when a later one fails, so the player keeps either the items or
// the money.
func (s *Service) sell(ctx context.Context, p *product.Product, player game.Player, units int, price decimal.Decimal) (*Receipt, error) {
	currency := p.Currency().ID()

	stocked, container := s.container(p)
	if container != nil && spaceUnits(p, container) < units {
		return nil, shared.ErrNotEnoughSpace.Withf("Shop storage is full")
	}

	if taken := p.Take(player, units); taken < units {
		p.Delivery(player, taken)
		return nil, shared.ErrNotEnoughItems
	}

	owner := uuid.Nil
	if stocked != nil && !stocked.IsAdmin() {
		owner = stocked.Owner()
		if err := s.economy.Withdraw(ctx, owner, currency, price); err != nil {
			p.Delivery(player, units)
			if errors.Is(err, shared.ErrInsufficientBalance) {
				return nil, shared.ErrInsufficientBalance.Withf("Shop owner can not afford this")
			}
			return nil, err
		}
	}
	if container != nil {
		p.DeliveryIn(container, units)
	}

	if err := s.economy.Deposit(ctx, player.ID(), currency, price); err != nil {
		s.logger.Error("Failed to pay player, returning items",
			zap.String("product", p.Key()),
			zap.String("player_id", player.ID().String()),
			zap.Error(err),
		)
		if container != nil {
			p.TakeIn(container, units)
		}
		p.Delivery(player, units)
		if owner != uuid.Nil {
			s.refund(ctx, owner, currency, price)
		}
		return nil, fmt.Errorf("failed to pay player: %w", err)
	}

	return s.complete(ctx, p, player, product.TradeSell, units, price)
}

func (s *Service) container(p *product.Product) (stockedShop, game.Inventory) {
	stocked, ok := p.Shop().(stockedShop)
	if !ok {
		return nil, nil
	}
	return stocked, stocked.Stock()
}

func (s *Service) balanceError(err error) error {
	if errors.Is(err, shared.ErrInsufficientBalance) {
		return shared.ErrInsufficientBalance
	}
	return fmt.Errorf("failed to charge player: %w", err)
}

func (s *Service) refund(ctx context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) {
	if err := s.economy.Deposit(ctx, playerID, currency, amount); err != nil {
		s.logger.Error("Failed to refund",
			zap.String("player_id", playerID.String()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) complete(ctx context.Context, p *product.Product, player game.Player, tradeType product.TradeType, units int, price decimal.Decimal) (*Receipt, error) {
	currency := p.Currency().ID()
	balance, err := s.economy.Balance(ctx, player.ID(), currency)
	if err != nil {
		s.logger.Warn("Failed to read balance after trade", zap.Error(err))
	}

	if s.publisher != nil {
		event := product.NewTradedEvent(p, player.ID(), tradeType, units, price)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish trade", zap.String("product", p.Key()), zap.Error(err))
		}
	}

	s.logger.Info("Trade completed",
		zap.String("product", p.Key()),
		zap.String("player", player.Name()),
		zap.String("trade_type", tradeType.String()),
		zap.Int("units", units),
		zap.String("total", price.String()),
	)

	return &Receipt{
		ShopID:    p.Shop().ID(),
		ProductID: p.ID(),
		TradeType: tradeType,
		Units:     units,
		Total:     price,
		Currency:  currency,
		Balance:   balance,
	}, nil
}

package trade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/gameshop/backend/internal/domain/shop"
	"github.com/gameshop/backend/internal/domain/stock"
	"github.com/gameshop/backend/internal/infrastructure/content"
	"github.com/gameshop/backend/internal/infrastructure/host"
	"github.com/gameshop/backend/internal/infrastructure/strategy/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stoneItem = game.ItemStack{ItemID: "stone", MaxStack: 64}
	coins     = valueobject.MustDecimalCurrency("coins", "$", 2)
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type productMap map[string]*product.Product

func (m productMap) Product(shopID, productID string) (*product.Product, error) {
	p, ok := m[shopID+"/"+productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

// syncPublisher hands events straight to its handlers
type syncPublisher struct {
	handlers []shared.EventHandler
	events   []shared.DomainEvent
}

func (p *syncPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		p.events = append(p.events, event)
		for _, h := range p.handlers {
			if err := h.Handle(ctx, event); err != nil {
				return err
			}
		}
	}
	return nil
}

type fixture struct {
	service  *Service
	ledger   *host.Ledger
	tracker  *stock.Tracker
	products productMap
	events   *syncPublisher
	virtual  *shop.VirtualShop
	registry *content.MemoryItemRegistry
}

func stoneContent(registry content.ItemRegistry, perUnit int) product.Content {
	return product.MustContent(content.NewItemHandler(registry), content.NewItemPacker(stoneItem, perUnit))
}

// newFixture builds the "blocks" virtual shop selling two stone per unit at
// 10 and buying them back at 4, with a player buy limit of 3.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ledger:   host.NewLedger(),
		tracker:  stock.NewTracker(),
		products: productMap{},
		events:   &syncPublisher{},
		registry: content.NewMemoryItemRegistry(stoneItem),
	}

	virtual, err := shop.NewVirtualShop("blocks", "Blocks")
	require.NoError(t, err)
	f.virtual = virtual

	limits := stock.NoLimits()
	limits.PlayerBuy = 3
	f.tracker.SetLimits("blocks/stone", limits)

	stone, _, err := virtual.NewVirtualProduct("stone", coins, stoneContent(f.registry, 2), shop.VirtualProductOptions{
		Pricer: product.NewFlatPricer(d("10"), d("4")),
		Limits: f.tracker.Resolver("blocks/stone"),
	})
	require.NoError(t, err)
	f.products["blocks/stone"] = stone

	f.events.handlers = append(f.events.handlers, NewTradeRecorder(f.tracker, f.products, nil))
	f.service = NewService(f.products, f.ledger, f.tracker, f.events, nil)
	return f
}

func (f *fixture) add(t *testing.T, id string, c product.Content, pricer product.Pricer) *product.Product {
	t.Helper()
	p, _, err := f.virtual.NewVirtualProduct(id, coins, c, shop.VirtualProductOptions{Pricer: pricer})
	require.NoError(t, err)
	f.products["blocks/"+id] = p
	return p
}

func (f *fixture) player(t *testing.T, slots int, balance string) *host.Player {
	t.Helper()
	player := host.NewPlayer("steve", host.NewSlotInventory(slots))
	require.NoError(t, f.ledger.Deposit(context.Background(), player.ID(), "coins", d(balance)))
	return player
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.Balance(context.Background(), id, "coins")
	require.NoError(t, err)
	return b
}

func TestService_Buy(t *testing.T) {
	f := newFixture(t)
	player := f.player(t, 36, "100")
	ctx := context.Background()

	receipt, err := f.service.Buy(ctx, player, "blocks", "stone", 2)
	require.NoError(t, err)

	assert.Equal(t, "blocks", receipt.ShopID)
	assert.Equal(t, "stone", receipt.ProductID)
	assert.Equal(t, product.TradeBuy, receipt.TradeType)
	assert.Equal(t, 2, receipt.Units)
	assert.True(t, receipt.Total.Equal(d("20")))
	assert.True(t, receipt.Balance.Equal(d("80")))
	assert.Equal(t, "coins", receipt.Currency)

	assert.Equal(t, 4, player.Inventory().Count(stoneItem))
	assert.True(t, f.balance(t, player.ID()).Equal(d("80")))

	require.Len(t, f.events.events, 1)
	traded, ok := f.events.events[0].(*product.TradedEvent)
	require.True(t, ok)
	assert.Equal(t, player.ID(), traded.PlayerID)
	assert.Equal(t, 2, traded.Units)

	// the recorder consumed two of the three allowed units
	assert.Equal(t, 1, f.products["blocks/stone"].AvailableAmount(player, product.TradeBuy))

	_, err = f.service.Buy(ctx, player, "blocks", "stone", 2)
	assert.ErrorIs(t, err, shared.ErrLimitReached)
	assert.EqualError(t, err, "Only 1 more units of stone can be traded")
}

func TestService_LimitReachedNamesRestock(t *testing.T) {
	f := newFixture(t)
	limits := stock.NoLimits()
	limits.PlayerBuy = 1
	limits.Restock = time.Hour
	f.tracker.SetLimits("blocks/stone", limits)

	player := f.player(t, 36, "100")
	ctx := context.Background()
	_, err := f.service.Buy(ctx, player, "blocks", "stone", 1)
	require.NoError(t, err)

	_, err = f.service.Buy(ctx, player, "blocks", "stone", 1)
	assert.ErrorIs(t, err, shared.ErrLimitReached)
	assert.Contains(t, err.Error(), "Only 0 more units of stone can be traded, restocks in ")
}

func TestService_BuyRejects(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture) (game.Player, string, int)
		wantErr error
	}{
		{
			name: "non positive units",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				return f.player(t, 36, "100"), "stone", 0
			},
			wantErr: shared.ErrInvalidInput,
		},
		{
			name: "unknown product",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				return f.player(t, 36, "100"), "missing", 1
			},
			wantErr: shared.ErrNotFound,
		},
		{
			name: "unregistered item",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				ghost := game.ItemStack{ItemID: "ghost"}
				c := product.MustContent(content.NewItemHandler(f.registry), content.NewItemPacker(ghost, 1))
				f.add(t, "ghost", c, product.NewFlatPricer(d("1"), d("1")))
				return f.player(t, 36, "100"), "ghost", 1
			},
			wantErr: shared.ErrProductInvalid,
		},
		{
			name: "buying disabled in shop",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				f.virtual.SetTransactionEnabled(product.TradeBuy, false)
				return f.player(t, 36, "100"), "stone", 1
			},
			wantErr: shared.ErrTradeDisabled,
		},
		{
			name: "buy price disabled",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				f.add(t, "cobble", stoneContent(f.registry, 1), product.NewDisabledPricer())
				return f.player(t, 36, "100"), "cobble", 1
			},
			wantErr: shared.ErrNotTradeable,
		},
		{
			name: "over the player limit",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				return f.player(t, 36, "100"), "stone", 4
			},
			wantErr: shared.ErrLimitReached,
		},
		{
			name: "inventory too small",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				f.add(t, "bulk", stoneContent(f.registry, 32), product.NewFlatPricer(d("1"), d("0")))
				return f.player(t, 1, "100"), "bulk", 3
			},
			wantErr: shared.ErrNotEnoughSpace,
		},
		{
			name: "balance too low",
			setup: func(t *testing.T, f *fixture) (game.Player, string, int) {
				return f.player(t, 36, "5"), "stone", 1
			},
			wantErr: shared.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			player, productID, units := tt.setup(t, f)

			receipt, err := f.service.Buy(context.Background(), player, "blocks", productID, units)
			assert.Nil(t, receipt)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, player.Inventory().Count(stoneItem))
			assert.Empty(t, f.events.events)
		})
	}
}

func TestService_BuyRequiresPlayer(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Buy(context.Background(), nil, "blocks", "stone", 1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_Sell(t *testing.T) {
	f := newFixture(t)
	player := f.player(t, 36, "0")
	player.Slots().Add(stoneItem, 6)
	ctx := context.Background()

	receipt, err := f.service.Sell(ctx, player, "blocks", "stone", 2)
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(d("8")))
	assert.True(t, receipt.Balance.Equal(d("8")))
	assert.Equal(t, 2, player.Inventory().Count(stoneItem))

	_, err = f.service.Sell(ctx, player, "blocks", "stone", 2)
	assert.ErrorIs(t, err, shared.ErrNotEnoughItems)
	assert.Equal(t, 2, player.Inventory().Count(stoneItem))

	f.virtual.SetTransactionEnabled(product.TradeSell, false)
	_, err = f.service.Sell(ctx, player, "blocks", "stone", 1)
	assert.ErrorIs(t, err, shared.ErrTradeDisabled)
}

func TestService_SellAll(t *testing.T) {
	t.Run("sells whole units only", func(t *testing.T) {
		f := newFixture(t)
		player := f.player(t, 36, "0")
		player.Slots().Add(stoneItem, 7)

		receipt, err := f.service.SellAll(context.Background(), player, "blocks", "stone")
		require.NoError(t, err)
		assert.Equal(t, 3, receipt.Units)
		assert.True(t, receipt.Total.Equal(d("12")))
		assert.Equal(t, 1, player.Inventory().Count(stoneItem))
	})

	t.Run("capped by the sell limit", func(t *testing.T) {
		f := newFixture(t)
		limits := stock.NoLimits()
		limits.PlayerSell = 2
		f.tracker.SetLimits("blocks/stone", limits)

		player := f.player(t, 36, "0")
		player.Slots().Add(stoneItem, 10)
		ctx := context.Background()

		receipt, err := f.service.SellAll(ctx, player, "blocks", "stone")
		require.NoError(t, err)
		assert.Equal(t, 2, receipt.Units)
		assert.True(t, receipt.Total.Equal(d("8")))
		assert.Equal(t, 6, player.Inventory().Count(stoneItem))

		_, err = f.service.SellAll(ctx, player, "blocks", "stone")
		assert.ErrorIs(t, err, shared.ErrLimitReached)
	})

	t.Run("nothing to sell", func(t *testing.T) {
		f := newFixture(t)
		player := f.player(t, 36, "0")
		player.Slots().Add(stoneItem, 1)

		_, err := f.service.SellAll(context.Background(), player, "blocks", "stone")
		assert.ErrorIs(t, err, shared.ErrNotEnoughItems)
	})
}

func newChestFixture(t *testing.T, admin bool) (*fixture, *host.SlotInventory, uuid.UUID) {
	t.Helper()
	f := newFixture(t)

	owner := uuid.New()
	container := host.NewSlotInventory(1)
	container.Add(stoneItem, 10)

	chest, err := shop.NewChestShop("steve_shop", owner, "Steve", container, admin)
	require.NoError(t, err)
	p, err := chest.NewChestProduct("stone", coins, stoneContent(f.registry, 2), product.NewFlatPricer(d("10"), d("4")))
	require.NoError(t, err)
	f.products["steve_shop/stone"] = p
	return f, container, owner
}

func TestService_ChestBuy(t *testing.T) {
	f, container, owner := newChestFixture(t, false)
	player := f.player(t, 36, "100")
	ctx := context.Background()

	_, err := f.service.Buy(ctx, player, "steve_shop", "stone", 6)
	assert.ErrorIs(t, err, shared.ErrNotEnoughItems)
	assert.True(t, f.balance(t, player.ID()).Equal(d("100")))

	receipt, err := f.service.Buy(ctx, player, "steve_shop", "stone", 2)
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(d("20")))
	assert.Equal(t, 6, container.Count(stoneItem))
	assert.Equal(t, 4, player.Inventory().Count(stoneItem))
	assert.True(t, f.balance(t, owner).Equal(d("20")))
}

func TestService_ChestSell(t *testing.T) {
	f, container, owner := newChestFixture(t, false)
	player := f.player(t, 36, "0")
	player.Slots().Add(stoneItem, 4)
	ctx := context.Background()

	_, err := f.service.Sell(ctx, player, "steve_shop", "stone", 2)
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.Equal(t, 4, player.Inventory().Count(stoneItem))

	require.NoError(t, f.ledger.Deposit(ctx, owner, "coins", d("50")))
	receipt, err := f.service.Sell(ctx, player, "steve_shop", "stone", 2)
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(d("8")))
	assert.Equal(t, 14, container.Count(stoneItem))
	assert.Zero(t, player.Inventory().Count(stoneItem))
	assert.True(t, f.balance(t, owner).Equal(d("42")))
	assert.True(t, f.balance(t, player.ID()).Equal(d("8")))
}

func TestService_ChestSellFullStorage(t *testing.T) {
	f, container, owner := newChestFixture(t, false)
	container.Add(stoneItem, 54)
	require.NoError(t, f.ledger.Deposit(context.Background(), owner, "coins", d("50")))

	player := f.player(t, 36, "0")
	player.Slots().Add(stoneItem, 2)

	_, err := f.service.Sell(context.Background(), player, "steve_shop", "stone", 1)
	assert.ErrorIs(t, err, shared.ErrNotEnoughSpace)
	assert.True(t, f.balance(t, owner).Equal(d("50")))
}

func TestService_AdminChestSkipsOwner(t *testing.T) {
	f, container, owner := newChestFixture(t, true)
	player := f.player(t, 36, "100")

	_, err := f.service.Buy(context.Background(), player, "steve_shop", "stone", 8)
	require.NoError(t, err)
	assert.Equal(t, 10, container.Count(stoneItem))
	assert.True(t, f.balance(t, owner).IsZero())
}

func TestTradeRecorder_FeedsDemand(t *testing.T) {
	f := newFixture(t)
	pricer, err := pricing.NewDynamicPricer(pricing.DynamicSettings{
		Buy:  pricing.DynamicBounds{Initial: d("10"), Min: d("5"), Max: d("20"), Step: d("1")},
		Sell: pricing.DynamicBounds{Initial: d("4"), Min: d("1"), Max: d("8"), Step: d("0.5")},
	})
	require.NoError(t, err)
	f.add(t, "gravel", stoneContent(f.registry, 1), pricer)

	player := f.player(t, 36, "100")
	_, err = f.service.Buy(context.Background(), player, "blocks", "gravel", 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), pricer.Demand())
	assert.True(t, pricer.BuyPrice().Equal(d("12")))
}

func TestTradeRecorder_Handle(t *testing.T) {
	recorder := NewTradeRecorder(stock.NewTracker(), productMap{}, nil)
	assert.Equal(t, []string{product.EventTypeProductTraded}, recorder.EventTypes())

	other := product.NewPriceChangedEvent("blocks", "stone", product.TradeBuy, d("1"), d("2"))
	assert.Error(t, recorder.Handle(context.Background(), other))
}

// slowInventory widens the gap between counting and taking items
type slowInventory struct {
	*host.SlotInventory
}

func (inv slowInventory) Count(stack game.ItemStack) int {
	n := inv.SlotInventory.Count(stack)
	time.Sleep(20 * time.Millisecond)
	return n
}

type slowPlayer struct {
	*host.Player
	inv slowInventory
}

func (p *slowPlayer) Inventory() game.Inventory { return p.inv }

func TestService_ConcurrentSellsPayOnce(t *testing.T) {
	f := newFixture(t)
	base := f.player(t, 36, "0")
	player := &slowPlayer{Player: base, inv: slowInventory{base.Slots()}}
	player.Slots().Add(stoneItem, 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.Sell(context.Background(), player, "blocks", "stone", 5)
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, shared.ErrNotEnoughItems)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Zero(t, player.Slots().Count(stoneItem))
	assert.True(t, f.balance(t, player.ID()).Equal(d("20")))
}

func TestService_ConcurrentBuysHonourLimit(t *testing.T) {
	f := newFixture(t)
	player := f.player(t, 36, "100")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.Buy(context.Background(), player, "blocks", "stone", 2)
		}()
	}
	wg.Wait()

	limited := 0
	for _, err := range errs {
		if errors.Is(err, shared.ErrLimitReached) {
			limited++
		}
	}
	assert.Equal(t, 2, limited)
	assert.Equal(t, 4, player.Inventory().Count(stoneItem))
	assert.True(t, f.balance(t, player.ID()).Equal(d("80")))
}

// brokenPayout fails every deposit into one account
type brokenPayout struct {
	*host.Ledger
	account uuid.UUID
}

func (e *brokenPayout) Deposit(ctx context.Context, playerID uuid.UUID, currency string, amount decimal.Decimal) error {
	if playerID == e.account {
		return errors.New("economy backend down")
	}
	return e.Ledger.Deposit(ctx, playerID, currency, amount)
}

func TestService_SellReturnsItemsWhenPayoutFails(t *testing.T) {
	t.Run("virtual shop", func(t *testing.T) {
		f := newFixture(t)
		player := f.player(t, 36, "0")
		player.Slots().Add(stoneItem, 10)
		service := NewService(f.products, &brokenPayout{Ledger: f.ledger, account: player.ID()}, f.tracker, f.events, nil)

		receipt, err := service.Sell(context.Background(), player, "blocks", "stone", 5)
		assert.Nil(t, receipt)
		assert.ErrorContains(t, err, "economy backend down")
		assert.Equal(t, 10, player.Inventory().Count(stoneItem))
		assert.True(t, f.balance(t, player.ID()).IsZero())
		assert.Empty(t, f.events.events)
	})

	t.Run("chest shop", func(t *testing.T) {
		f, container, owner := newChestFixture(t, false)
		require.NoError(t, f.ledger.Deposit(context.Background(), owner, "coins", d("50")))
		player := f.player(t, 36, "0")
		player.Slots().Add(stoneItem, 4)
		service := NewService(f.products, &brokenPayout{Ledger: f.ledger, account: player.ID()}, f.tracker, f.events, nil)

		_, err := service.Sell(context.Background(), player, "steve_shop", "stone", 2)
		assert.ErrorContains(t, err, "economy backend down")
		assert.Equal(t, 4, player.Inventory().Count(stoneItem))
		assert.Equal(t, 10, container.Count(stoneItem))
		assert.True(t, f.balance(t, owner).Equal(d("50")))
		assert.True(t, f.balance(t, player.ID()).IsZero())
	})
}

func TestService_ChestBuyRestocksWhenOwnerPayoutFails(t *testing.T) {
	f, container, owner := newChestFixture(t, false)
	player := f.player(t, 36, "100")
	service := NewService(f.products, &brokenPayout{Ledger: f.ledger, account: owner}, f.tracker, f.events, nil)

	_, err := service.Buy(context.Background(), player, "steve_shop", "stone", 2)
	assert.ErrorContains(t, err, "failed to pay shop owner")
	assert.Equal(t, 10, container.Count(stoneItem))
	assert.Zero(t, player.Inventory().Count(stoneItem))
	assert.True(t, f.balance(t, player.ID()).Equal(d("100")))
}

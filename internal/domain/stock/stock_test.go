package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idPlayer uuid.UUID

func (p idPlayer) ID() uuid.UUID             { return uuid.UUID(p) }
func (p idPlayer) Name() string              { return "p" }
func (p idPlayer) Inventory() game.Inventory { return nil }
func (p idPlayer) HasPermission(string) bool { return false }

func newTestTracker(start time.Time) (*Tracker, *time.Time) {
	now := start
	tr := NewTracker()
	tr.SetClock(func() time.Time { return now })
	return tr, &now
}

func TestTracker_Unlimited(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, Unlimited, tr.Available("main/x", uuid.New(), product.TradeBuy))
	require.NoError(t, tr.Record("main/x", uuid.New(), product.TradeBuy, 5))
	assert.Empty(t, tr.Snapshot())

	tr.SetLimits("main/x", NoLimits())
	assert.True(t, tr.Limits("main/x").IsUnlimited())
}

func TestTracker_Limits(t *testing.T) {
	tr, _ := newTestTracker(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	alice, bob := uuid.New(), uuid.New()

	tr.SetLimits("main/gem", Limits{GlobalBuy: 10, GlobalSell: Unlimited, PlayerBuy: 4, PlayerSell: 2})

	tests := []struct {
		name   string
		player uuid.UUID
		trade  product.TradeType
		want   int
	}{
		{"player cap below global", alice, product.TradeBuy, 4},
		{"global only without player", uuid.Nil, product.TradeBuy, 10},
		{"player sell cap", alice, product.TradeSell, 2},
		{"unlimited global sell without player", uuid.Nil, product.TradeSell, Unlimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Available("main/gem", tt.player, tt.trade))
		})
	}

	require.NoError(t, tr.Record("main/gem", alice, product.TradeBuy, 3))
	assert.Equal(t, 1, tr.Available("main/gem", alice, product.TradeBuy))
	assert.Equal(t, 4, tr.Available("main/gem", bob, product.TradeBuy))

	require.NoError(t, tr.Record("main/gem", bob, product.TradeBuy, 4))
	require.NoError(t, tr.Record("main/gem", uuid.New(), product.TradeBuy, 2))
	assert.Equal(t, 1, tr.Available("main/gem", alice, product.TradeBuy))
	assert.Equal(t, 0, tr.Available("main/gem", bob, product.TradeBuy))

	require.NoError(t, tr.Record("main/gem", alice, product.TradeBuy, 5))
	assert.Equal(t, 0, tr.Available("main/gem", alice, product.TradeBuy))

	assert.ErrorIs(t, tr.Record("main/gem", alice, product.TradeBuy, 0), shared.ErrInvalidInput)

	tr.Reset("main/gem")
	assert.Equal(t, 4, tr.Available("main/gem", alice, product.TradeBuy))
}

func TestTracker_Restock(t *testing.T) {
	tr, now := newTestTracker(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	alice := uuid.New()
	tr.SetLimits("main/gem", Limits{GlobalBuy: Unlimited, GlobalSell: Unlimited, PlayerBuy: 2, PlayerSell: Unlimited, Restock: time.Hour})

	require.NoError(t, tr.Record("main/gem", alice, product.TradeBuy, 2))
	assert.Equal(t, 0, tr.Available("main/gem", alice, product.TradeBuy))
	assert.Equal(t, time.Hour, tr.RestockIn("main/gem", alice, product.TradeBuy))

	*now = now.Add(40 * time.Minute)
	assert.Equal(t, 20*time.Minute, tr.RestockIn("main/gem", alice, product.TradeBuy))

	*now = now.Add(20 * time.Minute)
	assert.Equal(t, 2, tr.Available("main/gem", alice, product.TradeBuy))
	assert.Equal(t, time.Duration(0), tr.RestockIn("main/gem", alice, product.TradeBuy))
	assert.Empty(t, tr.Snapshot())

	require.NoError(t, tr.Record("main/gem", alice, product.TradeBuy, 1))
	assert.Equal(t, 1, tr.Available("main/gem", alice, product.TradeBuy))
}

func TestTracker_SnapshotRestore(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr, _ := newTestTracker(start)
	alice := uuid.New()
	limits := Limits{GlobalBuy: 10, GlobalSell: Unlimited, PlayerBuy: 5, PlayerSell: Unlimited}
	tr.SetLimits("main/gem", limits)

	require.NoError(t, tr.Record("main/gem", alice, product.TradeBuy, 3))
	entries := tr.Snapshot()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsGlobal())
	assert.Equal(t, 3, entries[1].Used)
	assert.Equal(t, start, entries[1].Since)

	restored, _ := newTestTracker(start)
	restored.SetLimits("main/gem", limits)
	restored.Restore(append(entries, Entry{ProductKey: "main/gem", PlayerID: uuid.New(), TradeType: product.TradeBuy}))

	assert.Equal(t, 2, restored.Available("main/gem", alice, product.TradeBuy))
	assert.Len(t, restored.Snapshot(), 2)
}

func TestTracker_Resolver(t *testing.T) {
	tr := NewTracker()
	alice := uuid.New()
	tr.SetLimits("main/gem", Limits{GlobalBuy: Unlimited, GlobalSell: 6, PlayerBuy: Unlimited, PlayerSell: Unlimited})
	require.NoError(t, tr.Record("main/gem", alice, product.TradeSell, 1))

	r := tr.Resolver("main/gem")
	assert.Equal(t, 5, r.AvailableAmount(idPlayer(alice), product.TradeSell))
	assert.Equal(t, 5, r.AvailableAmount(nil, product.TradeSell))
	assert.Equal(t, Unlimited, r.AvailableAmount(nil, product.TradeBuy))
}

type memRepo struct {
	entries []Entry
	err     error
}

func (r *memRepo) Load(context.Context) ([]Entry, error) { return r.entries, r.err }

func (r *memRepo) Save(_ context.Context, entries []Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = entries
	return nil
}

func TestTracker_SaveToLoadFrom(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr, _ := newTestTracker(start)
	bob := uuid.New()
	limits := Limits{GlobalBuy: Unlimited, GlobalSell: Unlimited, PlayerBuy: 4, PlayerSell: Unlimited}
	tr.SetLimits("main/gem", limits)
	require.NoError(t, tr.Record("main/gem", bob, product.TradeBuy, 1))

	repo := &memRepo{}
	require.NoError(t, tr.SaveTo(context.Background(), repo))
	require.Len(t, repo.entries, 1)

	restored, _ := newTestTracker(start)
	restored.SetLimits("main/gem", limits)
	require.NoError(t, restored.LoadFrom(context.Background(), repo))
	assert.Equal(t, 3, restored.Available("main/gem", bob, product.TradeBuy))

	broken := &memRepo{err: errors.New("redis down")}
	assert.ErrorContains(t, tr.SaveTo(context.Background(), broken), "redis down")
	assert.ErrorContains(t, restored.LoadFrom(context.Background(), broken), "failed to load")
	assert.Equal(t, 3, restored.Available("main/gem", bob, product.TradeBuy), "failed load keeps counters")
}

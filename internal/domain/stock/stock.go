// Package stock tracks how many units of a product may still be traded,
// globally and per player, with optional periodic restock.
package stock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Unlimited disables a limit
const Unlimited = -1

// Limits are the trade caps of one product. Negative values are unlimited.
type Limits struct {
	GlobalBuy  int `json:"global_buy"`
	GlobalSell int `json:"global_sell"`
	PlayerBuy  int `json:"player_buy"`
	PlayerSell int `json:"player_sell"`
	// Restock resets used amounts after this period, never when zero
	Restock time.Duration `json:"restock"`
}

// NoLimits returns limits allowing everything
func NoLimits() Limits {
	return Limits{GlobalBuy: Unlimited, GlobalSell: Unlimited, PlayerBuy: Unlimited, PlayerSell: Unlimited}
}

// IsUnlimited reports whether no cap applies
func (l Limits) IsUnlimited() bool {
	return l.GlobalBuy < 0 && l.GlobalSell < 0 && l.PlayerBuy < 0 && l.PlayerSell < 0
}

func (l Limits) global(t product.TradeType) int {
	if t == product.TradeBuy {
		return l.GlobalBuy
	}
	return l.GlobalSell
}

func (l Limits) player(t product.TradeType) int {
	if t == product.TradeBuy {
		return l.PlayerBuy
	}
	return l.PlayerSell
}

// Entry is the used amount of one counter, as persisted
type Entry struct {
	ProductKey string            `json:"product"`
	PlayerID   uuid.UUID         `json:"player"`
	TradeType  product.TradeType `json:"trade_type"`
	Used       int               `json:"used"`
	Since      time.Time         `json:"since"`
}

// IsGlobal reports whether the entry counts every player
func (e Entry) IsGlobal() bool {
	return e.PlayerID == uuid.Nil
}

// Repository persists counters between restarts
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

type counterKey struct {
	product string
	player  uuid.UUID
	trade   product.TradeType
}

type counter struct {
	used  int
	since time.Time
}

// Tracker keeps the counters of every limited product in memory
type Tracker struct {
	mu       sync.RWMutex
	limits   map[string]Limits
	counters map[counterKey]*counter
	now      func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		limits:   make(map[string]Limits),
		counters: make(map[counterKey]*counter),
		now:      time.Now,
	}
}

// SetClock replaces the time source
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// SetLimits sets the limits of a product, unlimited limits remove it
func (t *Tracker) SetLimits(productKey string, limits Limits) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limits.IsUnlimited() {
		delete(t.limits, productKey)
		return
	}
	t.limits[productKey] = limits
}

// Limits returns the limits of a product
func (t *Tracker) Limits(productKey string) Limits {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.limits[productKey]
	if !ok {
		return NoLimits()
	}
	return l
}

// Available returns the units the player may still trade, negative for unlimited
func (t *Tracker) Available(productKey string, playerID uuid.UUID, tradeType product.TradeType) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	l, ok := t.limits[productKey]
	if !ok {
		return Unlimited
	}
	now := t.now()

	available, limited := 0, false
	if limit := l.global(tradeType); limit >= 0 {
		available = limit - t.used(counterKey{productKey, uuid.Nil, tradeType}, l, now)
		limited = true
	}
	if limit := l.player(tradeType); limit >= 0 && playerID != uuid.Nil {
		left := limit - t.used(counterKey{productKey, playerID, tradeType}, l, now)
		if !limited || left < available {
			available = left
		}
		limited = true
	}
	if !limited {
		return Unlimited
	}
	return max(available, 0)
}

func (t *Tracker) used(key counterKey, l Limits, now time.Time) int {
	c, ok := t.counters[key]
	if !ok || expired(c, l, now) {
		return 0
	}
	return c.used
}

func expired(c *counter, l Limits, now time.Time) bool {
	return l.Restock > 0 && !now.Before(c.since.Add(l.Restock))
}

// Record counts traded units against the global and player counters
func (t *Tracker) Record(productKey string, playerID uuid.UUID, tradeType product.TradeType, units int) error {
	if units <= 0 {
		return fmt.Errorf("%w: units must be positive", shared.ErrInvalidInput)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limits[productKey]
	if !ok {
		return nil
	}
	now := t.now()
	if l.global(tradeType) >= 0 {
		t.add(counterKey{productKey, uuid.Nil, tradeType}, l, now, units)
	}
	if l.player(tradeType) >= 0 && playerID != uuid.Nil {
		t.add(counterKey{productKey, playerID, tradeType}, l, now, units)
	}
	return nil
}

func (t *Tracker) add(key counterKey, l Limits, now time.Time, units int) {
	c, ok := t.counters[key]
	if !ok || expired(c, l, now) {
		c = &counter{since: now}
		t.counters[key] = c
	}
	c.used += units
}

// RestockIn returns the time until the counter of the player restocks, zero
// when the product never restocks or nothing was traded.
func (t *Tracker) RestockIn(productKey string, playerID uuid.UUID, tradeType product.TradeType) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	l, ok := t.limits[productKey]
	if !ok || l.Restock <= 0 {
		return 0
	}
	c, ok := t.counters[counterKey{productKey, playerID, tradeType}]
	if !ok {
		return 0
	}
	left := c.since.Add(l.Restock).Sub(t.now())
	if left < 0 {
		return 0
	}
	return left
}

// Reset drops every counter of a product
func (t *Tracker) Reset(productKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.counters {
		if key.product == productKey {
			delete(t.counters, key)
		}
	}
}

// Snapshot returns the live counters ordered by product, trade type and player
func (t *Tracker) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	entries := make([]Entry, 0, len(t.counters))
	for key, c := range t.counters {
		if expired(c, t.limits[key.product], now) {
			continue
		}
		entries = append(entries, Entry{
			ProductKey: key.product,
			PlayerID:   key.player,
			TradeType:  key.trade,
			Used:       c.used,
			Since:      c.since,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ProductKey != b.ProductKey {
			return a.ProductKey < b.ProductKey
		}
		if a.TradeType != b.TradeType {
			return a.TradeType < b.TradeType
		}
		return a.PlayerID.String() < b.PlayerID.String()
	})
	return entries
}

// Restore replaces the counters with persisted entries
func (t *Tracker) Restore(entries []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters = make(map[counterKey]*counter, len(entries))
	for _, e := range entries {
		if e.Used <= 0 {
			continue
		}
		t.counters[counterKey{e.ProductKey, e.PlayerID, e.TradeType}] = &counter{used: e.Used, since: e.Since}
	}
}

// Resolver returns the limit resolver of one product
func (t *Tracker) Resolver(productKey string) product.LimitResolver {
	return resolver{tracker: t, key: productKey}
}

type resolver struct {
	tracker *Tracker
	key     string
}

func (r resolver) AvailableAmount(player game.Player, tradeType product.TradeType) int {
	playerID := uuid.Nil
	if player != nil {
		playerID = player.ID()
	}
	return r.tracker.Available(r.key, playerID, tradeType)
}

// SaveTo writes the live counters to the repository
func (t *Tracker) SaveTo(ctx context.Context, repo Repository) error {
	if err := repo.Save(ctx, t.Snapshot()); err != nil {
		return fmt.Errorf("failed to save trade counters: %w", err)
	}
	return nil
}

// LoadFrom replaces the counters with the ones stored in the repository
func (t *Tracker) LoadFrom(ctx context.Context, repo Repository) error {
	entries, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load trade counters: %w", err)
	}
	t.Restore(entries)
	return nil
}

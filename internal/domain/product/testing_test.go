package product

import (
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"github.com/gameshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type testShop struct {
	id         string
	buyEnabled bool
}

func (s *testShop) ID() string { return s.id }

func (s *testShop) IsTransactionEnabled(tradeType TradeType) bool {
	if tradeType == TradeBuy {
		return s.buyEnabled
	}
	return true
}

// bagInventory counts items by id without slot bookkeeping
type bagInventory struct {
	items    map[string]int
	capacity int
}

func newBag(capacity int) *bagInventory {
	return &bagInventory{items: make(map[string]int), capacity: capacity}
}

func (b *bagInventory) Holder() game.Player { return nil }

func (b *bagInventory) Count(stack game.ItemStack) int { return b.items[stack.ItemID] }

func (b *bagInventory) Space(stack game.ItemStack) int {
	used := 0
	for _, n := range b.items {
		used += n
	}
	return max(b.capacity-used, 0)
}

func (b *bagInventory) Add(stack game.ItemStack, amount int) int {
	fit := min(amount, b.Space(stack))
	b.items[stack.ItemID] += fit
	return amount - fit
}

func (b *bagInventory) Remove(stack game.ItemStack, amount int) int {
	removed := min(amount, b.items[stack.ItemID])
	b.items[stack.ItemID] -= removed
	return removed
}

type testPlayer struct {
	id    uuid.UUID
	name  string
	inv   game.Inventory
	perms map[string]bool
}

func newTestPlayer(inv game.Inventory, perms ...string) *testPlayer {
	p := &testPlayer{id: uuid.New(), name: "steve", inv: inv, perms: make(map[string]bool)}
	for _, node := range perms {
		p.perms[node] = true
	}
	return p
}

func (p *testPlayer) ID() uuid.UUID                  { return p.id }
func (p *testPlayer) Name() string                   { return p.name }
func (p *testPlayer) Inventory() game.Inventory      { return p.inv }
func (p *testPlayer) HasPermission(node string) bool { return p.perms[node] }

type testPacker struct {
	kind  ContentKind
	item  string
	unit  int
	dummy bool
}

func (p *testPacker) Kind() ContentKind { return p.kind }
func (p *testPacker) Reference() string { return p.item }
func (p *testPacker) UnitAmount() int   { return p.unit }
func (p *testPacker) IsDummy() bool     { return p.dummy }

func (p *testPacker) Preview() game.ItemStack {
	return game.ItemStack{ItemID: p.item, Amount: p.unit, MaxStack: 64}
}

func (p *testPacker) Delivery(inv game.Inventory, units int) {
	inv.Add(p.Preview(), units*p.unit)
}

func (p *testPacker) Take(inv game.Inventory, units int) int {
	return inv.Remove(p.Preview(), units*p.unit) / p.unit
}

func (p *testPacker) Count(inv game.Inventory) int      { return inv.Count(p.Preview()) }
func (p *testPacker) CountSpace(inv game.Inventory) int { return inv.Space(p.Preview()) }
func (p *testPacker) HasSpace(inv game.Inventory) bool  { return p.CountSpace(inv) >= p.unit }

func (p *testPacker) Placeholders() placeholder.Replacer {
	return placeholder.New("%product_item%", p.item, "%product_amount%", "%product_unit%")
}

type testHandler struct {
	kind  ContentKind
	known map[string]bool
}

func (h *testHandler) Kind() ContentKind { return h.kind }
func (h *testHandler) Name() string      { return string(h.kind) }

func (h *testHandler) Validate(packer Packer) bool {
	return h.known[packer.Reference()]
}

func itemContent(item string, unit int) Content {
	return MustContent(
		&testHandler{kind: ContentItem, known: map[string]bool{item: true}},
		&testPacker{kind: ContentItem, item: item, unit: unit},
	)
}

type fixedDiscount struct {
	allowed  bool
	modifier decimal.Decimal
}

func (d fixedDiscount) DiscountAllowed() bool             { return d.allowed }
func (d fixedDiscount) DiscountModifier() decimal.Decimal { return d.modifier }

type fixedMultiplier decimal.Decimal

func (m fixedMultiplier) SellMultiplier(game.Player) decimal.Decimal {
	return decimal.Decimal(m)
}

type fixedLimit int

func (l fixedLimit) AvailableAmount(game.Player, TradeType) int { return int(l) }

var testCoins = valueobject.MustDecimalCurrency("coins", "$", 2)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

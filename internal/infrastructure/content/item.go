package content

import (
	"strconv"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
)

// Placeholder tokens rendered by item packers
const (
	TokenItemName   = "%product_item_name%"
	TokenItemAmount = "%product_amount%"
)

// ItemPacker delivers a fixed amount of a registered item per unit
type ItemPacker struct {
	stack game.ItemStack
}

// NewItemPacker creates an item packer for amount items of the template per unit
func NewItemPacker(template game.ItemStack, amount int) *ItemPacker {
	if amount <= 0 {
		amount = 1
	}
	return &ItemPacker{stack: template.WithAmount(amount)}
}

func (p *ItemPacker) Kind() product.ContentKind { return product.ContentItem }
func (p *ItemPacker) Reference() string         { return p.stack.ItemID }
func (p *ItemPacker) UnitAmount() int           { return p.stack.Amount }
func (p *ItemPacker) IsDummy() bool             { return false }

// Preview returns a copy of the unit stack
func (p *ItemPacker) Preview() game.ItemStack {
	return p.stack.WithAmount(p.stack.Amount)
}

// Delivery adds units worth of items. Items that do not fit are dropped.
func (p *ItemPacker) Delivery(inv game.Inventory, units int) {
	if units <= 0 {
		return
	}
	inv.Add(p.stack, units*p.stack.Amount)
}

// Take removes units worth of items. A trailing partial unit is put back so
// only whole units leave the inventory.
func (p *ItemPacker) Take(inv game.Inventory, units int) int {
	if units <= 0 {
		return 0
	}
	removed := inv.Remove(p.stack, units*p.stack.Amount)
	if rest := removed % p.stack.Amount; rest > 0 {
		inv.Add(p.stack, rest)
	}
	return removed / p.stack.Amount
}

// Count returns the amount of matching items
func (p *ItemPacker) Count(inv game.Inventory) int {
	return inv.Count(p.stack)
}

// CountSpace returns how many more matching items fit
func (p *ItemPacker) CountSpace(inv game.Inventory) int {
	return inv.Space(p.stack)
}

// HasSpace reports whether one unit fits
func (p *ItemPacker) HasSpace(inv game.Inventory) bool {
	return p.CountSpace(inv) >= p.stack.Amount
}

// Placeholders renders the item name and unit amount
func (p *ItemPacker) Placeholders() placeholder.Replacer {
	name := p.stack.DisplayName
	if name == "" {
		name = p.stack.ItemID
	}
	return placeholder.New(
		TokenItemName, name,
		TokenItemAmount, strconv.Itoa(p.stack.Amount),
	)
}

// ItemHandler validates that the item of a packer is still registered
type ItemHandler struct {
	registry ItemRegistry
}

// NewItemHandler creates an item handler
func NewItemHandler(registry ItemRegistry) *ItemHandler {
	return &ItemHandler{registry: registry}
}

func (h *ItemHandler) Kind() product.ContentKind { return product.ContentItem }
func (h *ItemHandler) Name() string              { return "item" }

// Validate checks the referenced item id against the registry
func (h *ItemHandler) Validate(packer product.Packer) bool {
	_, ok := h.registry.Lookup(packer.Reference())
	return ok
}

var (
	_ product.Packer  = (*ItemPacker)(nil)
	_ product.Handler = (*ItemHandler)(nil)
)

package content

import (
	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
)

// DummyPacker stands in for content that could not be loaded.
// Products carrying it are never valid.
type DummyPacker struct {
	preview game.ItemStack
}

// NewDummyPacker creates a dummy packer with a display stack
func NewDummyPacker(preview game.ItemStack) *DummyPacker {
	return &DummyPacker{preview: preview.WithAmount(1)}
}

func (p *DummyPacker) Kind() product.ContentKind          { return product.ContentDummy }
func (p *DummyPacker) Reference() string                  { return "" }
func (p *DummyPacker) UnitAmount() int                    { return 1 }
func (p *DummyPacker) IsDummy() bool                      { return true }
func (p *DummyPacker) Preview() game.ItemStack            { return p.preview.WithAmount(1) }
func (p *DummyPacker) Delivery(game.Inventory, int)       {}
func (p *DummyPacker) Take(game.Inventory, int) int       { return 0 }
func (p *DummyPacker) Count(game.Inventory) int           { return 0 }
func (p *DummyPacker) CountSpace(game.Inventory) int      { return 0 }
func (p *DummyPacker) HasSpace(game.Inventory) bool       { return false }
func (p *DummyPacker) Placeholders() placeholder.Replacer { return placeholder.Identity }

// DummyHandler rejects everything
type DummyHandler struct{}

func (DummyHandler) Kind() product.ContentKind    { return product.ContentDummy }
func (DummyHandler) Name() string                 { return "dummy" }
func (DummyHandler) Validate(product.Packer) bool { return false }

// Dummy returns a dummy content pair
func Dummy() product.Content {
	return product.MustContent(DummyHandler{}, NewDummyPacker(game.ItemStack{ItemID: "barrier", MaxStack: 1}))
}

var (
	_ product.Packer  = (*DummyPacker)(nil)
	_ product.Handler = DummyHandler{}
)

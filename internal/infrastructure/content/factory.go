package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Descriptor is the stored form of a product content
type Descriptor struct {
	Kind product.ContentKind `json:"kind"`
	Data json.RawMessage     `json:"data,omitempty"`
}

// ItemData is the descriptor payload of item content
type ItemData struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

// CommandData is the descriptor payload of command content
type CommandData struct {
	Commands []string `json:"commands"`
	Icon     string   `json:"icon,omitempty"`
	Name     string   `json:"name,omitempty"`
}

// PermissionData is the descriptor payload of permission content
type PermissionData struct {
	Permissions []string `json:"permissions"`
	Icon        string   `json:"icon,omitempty"`
	Name        string   `json:"name,omitempty"`
}

// Factory builds product contents from descriptors and back
type Factory struct {
	items       ItemRegistry
	itemHandler *ItemHandler
	dispatcher  game.CommandDispatcher
	permissions game.PermissionService
	logger      *zap.Logger
}

// NewFactory creates a content factory
func NewFactory(items ItemRegistry, dispatcher game.CommandDispatcher, permissions game.PermissionService, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		items:       items,
		itemHandler: NewItemHandler(items),
		dispatcher:  dispatcher,
		permissions: permissions,
		logger:      logger,
	}
}

// Build creates the content described by d. Items that are not registered
// still produce item content, which the item handler then reports invalid.
func (f *Factory) Build(d Descriptor) (product.Content, error) {
	switch d.Kind {
	case product.ContentItem:
		var data ItemData
		if err := decode(d, &data); err != nil {
			return product.Content{}, err
		}
		if strings.TrimSpace(data.Item) == "" {
			return product.Content{}, fmt.Errorf("%w: item content requires an item id", shared.ErrInvalidInput)
		}
		template, ok := f.items.Lookup(data.Item)
		if !ok {
			f.logger.Warn("Product references unregistered item", zap.String("item", data.Item))
			template = game.ItemStack{ItemID: strings.ToLower(data.Item), MaxStack: 64}
		}
		return product.NewContent(f.itemHandler, NewItemPacker(template, data.Amount))

	case product.ContentCommand:
		var data CommandData
		if err := decode(d, &data); err != nil {
			return product.Content{}, err
		}
		packer := NewCommandPacker(data.Commands, f.icon(data.Icon, data.Name), f.dispatcher, f.logger)
		return product.NewContent(CommandHandler{}, packer)

	case product.ContentPermission:
		var data PermissionData
		if err := decode(d, &data); err != nil {
			return product.Content{}, err
		}
		packer := NewPermissionPacker(data.Permissions, f.icon(data.Icon, data.Name), f.permissions, f.logger)
		return product.NewContent(PermissionHandler{}, packer)

	case product.ContentDummy:
		return Dummy(), nil

	default:
		return product.Content{}, fmt.Errorf("%w: unknown content kind '%s'", shared.ErrInvalidInput, d.Kind)
	}
}

// BuildOrDummy is like Build but falls back to dummy content on error
func (f *Factory) BuildOrDummy(d Descriptor) product.Content {
	c, err := f.Build(d)
	if err != nil {
		f.logger.Warn("Falling back to dummy content",
			zap.String("kind", d.Kind.String()),
			zap.Error(err),
		)
		return Dummy()
	}
	return c
}

// Describe returns the descriptor of a content built by this package
func (f *Factory) Describe(c product.Content) (Descriptor, error) {
	var data any
	switch p := c.Packer().(type) {
	case *ItemPacker:
		data = ItemData{Item: p.Reference(), Amount: p.UnitAmount()}
	case *CommandPacker:
		preview := p.Preview()
		data = CommandData{Commands: p.Commands(), Icon: preview.ItemID, Name: preview.DisplayName}
	case *PermissionPacker:
		preview := p.Preview()
		data = PermissionData{Permissions: p.Nodes(), Icon: preview.ItemID, Name: preview.DisplayName}
	case *DummyPacker:
		return Descriptor{Kind: product.ContentDummy}, nil
	default:
		return Descriptor{}, fmt.Errorf("unsupported packer %T", p)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to marshal %s content: %w", c.Kind(), err)
	}
	return Descriptor{Kind: c.Kind(), Data: raw}, nil
}

func (f *Factory) icon(itemID, name string) game.ItemStack {
	if itemID == "" {
		itemID = "paper"
	}
	stack, ok := f.items.Lookup(itemID)
	if !ok {
		stack = game.ItemStack{ItemID: strings.ToLower(itemID), MaxStack: 64}
	}
	if name != "" {
		stack.DisplayName = name
	}
	return stack
}

func decode(d Descriptor, v any) error {
	if len(d.Data) == 0 {
		return fmt.Errorf("%w: %s content has no data", shared.ErrInvalidInput, d.Kind)
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("%w: %s content: %v", shared.ErrInvalidInput, d.Kind, err)
	}
	return nil
}

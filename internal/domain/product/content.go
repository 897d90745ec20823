package product

import (
	"errors"
	"fmt"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
)

// ContentKind tags the variant of a handler/packer pair
type ContentKind string

const (
	ContentDummy      ContentKind = "dummy"
	ContentItem       ContentKind = "item"
	ContentCommand    ContentKind = "command"
	ContentPermission ContentKind = "permission"
)

// String returns the string representation of the content kind
func (k ContentKind) String() string {
	return string(k)
}

// IsValid returns true if the content kind is known
func (k ContentKind) IsValid() bool {
	switch k {
	case ContentDummy, ContentItem, ContentCommand, ContentPermission:
		return true
	default:
		return false
	}
}

// Packer materializes the deliverable of a product against an inventory.
// Counts and space are expressed in raw amounts; count arguments of Delivery and
// Take are expressed in units. Take returns the whole units it removed.
type Packer interface {
	Kind() ContentKind
	// Reference returns what the packer points at, e.g. a registered item id
	Reference() string
	UnitAmount() int
	IsDummy() bool
	Preview() game.ItemStack
	Delivery(inv game.Inventory, units int)
	Take(inv game.Inventory, units int) int
	Count(inv game.Inventory) int
	CountSpace(inv game.Inventory) int
	HasSpace(inv game.Inventory) bool
	Placeholders() placeholder.Replacer
}

// Handler validates that the content referenced by a packer is still legal
type Handler interface {
	Kind() ContentKind
	Name() string
	Validate(packer Packer) bool
}

// ErrContentKindMismatch is returned when a handler and packer of different variants are paired
var ErrContentKindMismatch = errors.New("handler and packer content kinds differ")

// Content is a handler and its packer, always replaced together
type Content struct {
	handler Handler
	packer  Packer
}

// NewContent pairs a handler with a packer of the same kind
func NewContent(handler Handler, packer Packer) (Content, error) {
	if handler == nil || packer == nil {
		return Content{}, errors.New("handler and packer are required")
	}
	if handler.Kind() != packer.Kind() {
		return Content{}, fmt.Errorf("%w: %s vs %s", ErrContentKindMismatch, handler.Kind(), packer.Kind())
	}
	return Content{handler: handler, packer: packer}, nil
}

// MustContent is like NewContent but panics on error
func MustContent(handler Handler, packer Packer) Content {
	c, err := NewContent(handler, packer)
	if err != nil {
		panic(err)
	}
	return c
}

// Kind returns the variant shared by handler and packer
func (c Content) Kind() ContentKind {
	if c.packer == nil {
		return ""
	}
	return c.packer.Kind()
}

func (c Content) Handler() Handler { return c.handler }
func (c Content) Packer() Packer   { return c.packer }

// IsZero reports whether the content was never initialized
func (c Content) IsZero() bool {
	return c.handler == nil || c.packer == nil
}

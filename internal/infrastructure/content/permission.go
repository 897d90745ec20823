package content

import (
	"strings"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"go.uber.org/zap"
)

// TokenPermissions lists the granted permission nodes
const TokenPermissions = "%product_permissions%"

// PermissionPacker grants permission nodes. A player holding all of them
// counts as owning one unit and has no space for another.
type PermissionPacker struct {
	nodes   []string
	preview game.ItemStack
	service game.PermissionService
	logger  *zap.Logger
}

// NewPermissionPacker creates a permission packer
func NewPermissionPacker(nodes []string, preview game.ItemStack, service game.PermissionService, logger *zap.Logger) *PermissionPacker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionPacker{
		nodes:   append([]string(nil), nodes...),
		preview: preview.WithAmount(1),
		service: service,
		logger:  logger,
	}
}

func (p *PermissionPacker) Kind() product.ContentKind { return product.ContentPermission }
func (p *PermissionPacker) Reference() string         { return strings.Join(p.nodes, ",") }
func (p *PermissionPacker) UnitAmount() int           { return 1 }
func (p *PermissionPacker) IsDummy() bool             { return false }
func (p *PermissionPacker) Preview() game.ItemStack   { return p.preview.WithAmount(1) }

// Nodes returns a copy of the permission nodes
func (p *PermissionPacker) Nodes() []string {
	return append([]string(nil), p.nodes...)
}

// Delivery grants every node to the inventory holder. Units beyond one grant nothing new.
func (p *PermissionPacker) Delivery(inv game.Inventory, units int) {
	holder := inv.Holder()
	if holder == nil || units <= 0 {
		return
	}
	for _, node := range p.nodes {
		if err := p.service.Grant(holder, node); err != nil {
			p.logger.Warn("Permission grant failed",
				zap.String("node", node),
				zap.String("player", holder.Name()),
				zap.Error(err),
			)
		}
	}
}

// Take reports every unit as taken. Permissions are never revoked by a trade.
func (p *PermissionPacker) Take(_ game.Inventory, units int) int { return max(units, 0) }

// Count returns 1 when the holder owns every node
func (p *PermissionPacker) Count(inv game.Inventory) int {
	if p.owned(inv) {
		return 1
	}
	return 0
}

// CountSpace returns 1 while the holder misses a node
func (p *PermissionPacker) CountSpace(inv game.Inventory) int {
	if inv.Holder() == nil || p.owned(inv) {
		return 0
	}
	return 1
}

func (p *PermissionPacker) HasSpace(inv game.Inventory) bool {
	return p.CountSpace(inv) > 0
}

func (p *PermissionPacker) owned(inv game.Inventory) bool {
	holder := inv.Holder()
	if holder == nil {
		return false
	}
	for _, node := range p.nodes {
		if !holder.HasPermission(node) {
			return false
		}
	}
	return true
}

// Placeholders renders the preview name and the node list
func (p *PermissionPacker) Placeholders() placeholder.Replacer {
	return placeholder.New(
		TokenItemName, p.preview.DisplayName,
		TokenPermissions, strings.Join(p.nodes, ", "),
	)
}

// PermissionHandler accepts permission packers with at least one node
type PermissionHandler struct{}

func (PermissionHandler) Kind() product.ContentKind { return product.ContentPermission }
func (PermissionHandler) Name() string              { return "permission" }

func (PermissionHandler) Validate(packer product.Packer) bool {
	return strings.TrimSpace(packer.Reference()) != ""
}

var (
	_ product.Packer  = (*PermissionPacker)(nil)
	_ product.Handler = PermissionHandler{}
)

package content

import (
	"math"
	"strings"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/gameshop/backend/internal/domain/product"
	"github.com/gameshop/backend/internal/domain/shared/placeholder"
	"go.uber.org/zap"
)

// TokenPlayerName is substituted with the receiving player's name in commands
const TokenPlayerName = "%player_name%"

// CommandPacker runs console commands for every delivered unit
type CommandPacker struct {
	commands   []string
	preview    game.ItemStack
	dispatcher game.CommandDispatcher
	logger     *zap.Logger
}

// NewCommandPacker creates a command packer
func NewCommandPacker(commands []string, preview game.ItemStack, dispatcher game.CommandDispatcher, logger *zap.Logger) *CommandPacker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandPacker{
		commands:   append([]string(nil), commands...),
		preview:    preview.WithAmount(1),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (p *CommandPacker) Kind() product.ContentKind { return product.ContentCommand }
func (p *CommandPacker) Reference() string         { return strings.Join(p.commands, "\n") }
func (p *CommandPacker) UnitAmount() int           { return 1 }
func (p *CommandPacker) IsDummy() bool             { return false }
func (p *CommandPacker) Preview() game.ItemStack   { return p.preview.WithAmount(1) }

// Commands returns a copy of the configured commands
func (p *CommandPacker) Commands() []string {
	return append([]string(nil), p.commands...)
}

// Delivery dispatches every command once per unit on behalf of the inventory holder
func (p *CommandPacker) Delivery(inv game.Inventory, units int) {
	holder := inv.Holder()
	name := ""
	if holder != nil {
		name = holder.Name()
	}
	replace := placeholder.New(TokenPlayerName, name)

	for i := 0; i < units; i++ {
		for _, cmd := range p.commands {
			line := replace(cmd)
			if err := p.dispatcher.Dispatch(line); err != nil {
				p.logger.Warn("Command dispatch failed",
					zap.String("command", line),
					zap.String("player", name),
					zap.Error(err),
				)
			}
		}
	}
}

// Take removes nothing, commands cannot be returned
func (p *CommandPacker) Take(game.Inventory, int) int { return 0 }

// Count is always zero, commands are not held
func (p *CommandPacker) Count(game.Inventory) int { return 0 }

// CountSpace is unbounded
func (p *CommandPacker) CountSpace(game.Inventory) int { return math.MaxInt32 }

func (p *CommandPacker) HasSpace(game.Inventory) bool { return true }

// Placeholders renders the preview name
func (p *CommandPacker) Placeholders() placeholder.Replacer {
	return placeholder.New(TokenItemName, p.preview.DisplayName)
}

// CommandHandler accepts any command packer
type CommandHandler struct{}

func (CommandHandler) Kind() product.ContentKind { return product.ContentCommand }
func (CommandHandler) Name() string              { return "command" }

// Validate requires at least one command
func (CommandHandler) Validate(packer product.Packer) bool {
	return strings.TrimSpace(packer.Reference()) != ""
}

var (
	_ product.Packer  = (*CommandPacker)(nil)
	_ product.Handler = CommandHandler{}
)

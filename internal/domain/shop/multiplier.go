package shop

import (
	"sort"

	"github.com/gameshop/backend/internal/domain/game"
	"github.com/shopspring/decimal"
)

// DefaultMultiplierPrefix is the permission prefix of sell multiplier ranks
const DefaultMultiplierPrefix = "shop.sellmultiplier."

// RankMultipliers resolves sell multipliers from permission gated ranks.
// A player with several ranks gets the highest multiplier, players without
// one get 1.
type RankMultipliers struct {
	prefix string
	ranks  map[string]decimal.Decimal
	order  []string
}

// NewRankMultipliers creates a resolver. An empty prefix uses DefaultMultiplierPrefix.
func NewRankMultipliers(prefix string, ranks map[string]decimal.Decimal) *RankMultipliers {
	if prefix == "" {
		prefix = DefaultMultiplierPrefix
	}
	r := &RankMultipliers{prefix: prefix, ranks: make(map[string]decimal.Decimal, len(ranks))}
	for rank, m := range ranks {
		if m.IsNegative() {
			continue
		}
		r.ranks[rank] = m
		r.order = append(r.order, rank)
	}
	sort.Strings(r.order)
	return r
}

// SellMultiplier returns the highest multiplier among the player's ranks
func (r *RankMultipliers) SellMultiplier(player game.Player) decimal.Decimal {
	best := decimal.NewFromInt(1)
	found := false
	for _, rank := range r.order {
		if !player.HasPermission(r.prefix + rank) {
			continue
		}
		m := r.ranks[rank]
		if !found || m.GreaterThan(best) {
			best = m
			found = true
		}
	}
	return best
}

// Ranks returns the configured rank names in order
func (r *RankMultipliers) Ranks() []string {
	return append([]string(nil), r.order...)
}

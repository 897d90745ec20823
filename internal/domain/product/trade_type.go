package product

import (
	"fmt"
	"slices"
	"strings"
)

// TradeType is the direction of a transaction, seen from the player
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// String returns the string representation of the trade type
func (t TradeType) String() string {
	return string(t)
}

// IsValid returns true if the trade type is valid
func (t TradeType) IsValid() bool {
	return slices.Contains(AllTradeTypes(), t)
}

// Opposite returns the other trade direction
func (t TradeType) Opposite() TradeType {
	if t == TradeBuy {
		return TradeSell
	}
	return TradeBuy
}

// ParseTradeType parses a trade type, ignoring case
func ParseTradeType(s string) (TradeType, error) {
	t := TradeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown trade type %q, expected one of %v", s, AllTradeTypes())
	}
	return t, nil
}

// AllTradeTypes returns both trade directions
func AllTradeTypes() []TradeType {
	return []TradeType{TradeBuy, TradeSell}
}

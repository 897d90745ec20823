package valueobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency converts raw amounts to the canonical precision of an economy currency.
// Implementations must make FineValue idempotent: FineValue(FineValue(x)) == FineValue(x).
type Currency interface {
	// ID returns the currency identifier, e.g. "coins"
	ID() string
	// FineValue quantizes a raw amount to the currency precision
	FineValue(amount decimal.Decimal) decimal.Decimal
	// Format renders an already quantized amount for display
	Format(amount decimal.Decimal) string
}

// RoundingMode selects how DecimalCurrency quantizes amounts
type RoundingMode string

const (
	RoundingHalfUp RoundingMode = "half_up"
	RoundingFloor  RoundingMode = "floor"
)

// DecimalCurrency is a Currency backed by a fixed number of decimal places
type DecimalCurrency struct {
	id        string
	symbol    string
	precision int32
	rounding  RoundingMode
}

// NewDecimalCurrency creates a new DecimalCurrency.
// A precision of 0 makes the currency integral (no fractional coins).
func NewDecimalCurrency(id, symbol string, precision int32, rounding RoundingMode) (*DecimalCurrency, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return nil, errors.New("currency id cannot be empty")
	}
	if precision < 0 {
		return nil, fmt.Errorf("currency %s: precision cannot be negative", id)
	}
	switch rounding {
	case "":
		rounding = RoundingHalfUp
	case RoundingHalfUp, RoundingFloor:
	default:
		return nil, fmt.Errorf("currency %s: unknown rounding mode %q", id, rounding)
	}
	return &DecimalCurrency{
		id:        id,
		symbol:    symbol,
		precision: precision,
		rounding:  rounding,
	}, nil
}

// MustDecimalCurrency is like NewDecimalCurrency but panics on error
func MustDecimalCurrency(id, symbol string, precision int32) *DecimalCurrency {
	c, err := NewDecimalCurrency(id, symbol, precision, RoundingHalfUp)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns the currency identifier
func (c *DecimalCurrency) ID() string {
	return c.id
}

// Symbol returns the display symbol
func (c *DecimalCurrency) Symbol() string {
	return c.symbol
}

// Precision returns the number of decimal places kept
func (c *DecimalCurrency) Precision() int32 {
	return c.precision
}

// FineValue quantizes amount to the currency precision
func (c *DecimalCurrency) FineValue(amount decimal.Decimal) decimal.Decimal {
	if c.rounding == RoundingFloor {
		return amount.RoundFloor(c.precision)
	}
	return amount.Round(c.precision)
}

// Format renders amount with the currency symbol
func (c *DecimalCurrency) Format(amount decimal.Decimal) string {
	s := c.FineValue(amount).StringFixed(c.precision)
	if c.symbol == "" {
		return s + " " + c.id
	}
	return c.symbol + s
}

// Ensure DecimalCurrency implements Currency
var _ Currency = (*DecimalCurrency)(nil)

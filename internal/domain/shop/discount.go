package shop

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount lowers buy prices of a virtual shop during a weekly time window
type Discount struct {
	Percent decimal.Decimal `json:"percent"`
	// Days the discount applies on, every day when empty
	Days []time.Weekday `json:"days,omitempty"`
	// From and To are offsets from midnight; a zero To means end of day
	From time.Duration `json:"from"`
	To   time.Duration `json:"to"`
}

// Validate checks percent and window
func (d Discount) Validate() error {
	if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
		return fmt.Errorf("discount percent %s must be within 0..100", d.Percent)
	}
	if d.From < 0 || d.To < 0 || d.From >= 24*time.Hour || d.To > 24*time.Hour {
		return errors.New("discount window must be within one day")
	}
	if d.To != 0 && d.To <= d.From {
		return errors.New("discount window ends before it starts")
	}
	return nil
}

// IsActive reports whether the discount applies at t
func (d Discount) IsActive(t time.Time) bool {
	if len(d.Days) > 0 && !slices.Contains(d.Days, t.Weekday()) {
		return false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	end := d.To
	if end == 0 {
		end = 24 * time.Hour
	}
	return offset >= d.From && offset < end
}

// VirtualDiscount is the discount policy of a virtual product. Products opt
// in with SetAllowed; the modifier comes from the owning shop.
type VirtualDiscount struct {
	shop    *VirtualShop
	allowed atomic.Bool
}

// NewVirtualDiscount creates a policy bound to shop
func NewVirtualDiscount(shop *VirtualShop, allowed bool) *VirtualDiscount {
	d := &VirtualDiscount{shop: shop}
	d.allowed.Store(allowed)
	return d
}

// DiscountAllowed reports whether the product takes shop discounts
func (d *VirtualDiscount) DiscountAllowed() bool {
	return d.allowed.Load()
}

// SetAllowed switches shop discounts for the product
func (d *VirtualDiscount) SetAllowed(allowed bool) {
	d.allowed.Store(allowed)
}

// DiscountModifier returns the current modifier of the owning shop
func (d *VirtualDiscount) DiscountModifier() decimal.Decimal {
	return d.shop.DiscountModifier()
}

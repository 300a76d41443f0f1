// Package shipping computes order totals. All arithmetic uses fixed-precision
// decimals; float accumulation is never involved.
package shipping

import "github.com/shopspring/decimal"

// Line is a (quantity, unit price) pair from the cart.
type Line struct {
	Quantity int
	Price    decimal.Decimal
}

// Info is the result of quoting a cart: subtotal, fee and grand total.
type Info struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Policy is the shipping fee policy: orders at or above FreeThreshold ship
// free, everything else pays the flat fee.
type Policy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// DefaultPolicy matches the storefront defaults (VND).
func DefaultPolicy() Policy {
	return Policy{
		FreeThreshold: decimal.NewFromInt(500000),
		FlatFee:       decimal.NewFromInt(30000),
	}
}

// Subtotal sums quantity x price over the given lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return total
}

// Quote applies the fee policy to a subtotal.
func (p Policy) Quote(subtotal decimal.Decimal) Info {
	fee := p.FlatFee
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		fee = decimal.Zero
	}
	return Info{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal.Add(fee),
	}
}

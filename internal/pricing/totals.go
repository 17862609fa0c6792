// Package pricing turns a cart into order totals. Everything is integer
// cents; no floating point money anywhere.
package pricing

import "github.com/Addisaurus/Tallow-Website/internal/cart"

const (
	// TaxRatePercent is the flat sales tax rate.
	TaxRatePercent = 8
	// FlatShippingCents is charged below the free-shipping threshold.
	FlatShippingCents = 500
	// FreeShippingThresholdCents is the subtotal at which shipping is free.
	FreeShippingThresholdCents = 5000
)

type Totals struct {
	Subtotal int64
	Tax      int64
	Shipping int64
	Total    int64
}

// Compute derives totals from cart lines. Pure: same lines, same totals.
// Tax is floor(subtotal * 8%); an empty cart yields all zeros.
func Compute(lines []cart.Line) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	tax := subtotal * TaxRatePercent / 100

	var shipping int64
	if subtotal > 0 && subtotal < FreeShippingThresholdCents {
		shipping = FlatShippingCents
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}

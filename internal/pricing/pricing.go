// Package pricing turns cart contents into a price breakdown.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
)

// Rules are the storewide pricing constants.
type Rules struct {
	// Shipping is free only when the subtotal is strictly greater than this.
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
	CODFee                decimal.Decimal
}

// DefaultRules are the store's fixed pricing constants.
var DefaultRules = Rules{
	FreeShippingThreshold: decimal.NewFromInt(5000),
	FlatShippingFee:       decimal.NewFromInt(200),
	TaxRate:               decimal.RequireFromString("0.18"),
	CODFee:                decimal.NewFromInt(50),
}

// Compute returns the breakdown for items paid with method. It has no hidden
// state: identical inputs, in any order, yield an identical breakdown.
func Compute(items []entity.LineItem, method entity.PaymentMethod, rules Rules) entity.PricingBreakdown {
	subtotal := entity.Subtotal(items)

	shipping := rules.FlatShippingFee
	remaining := rules.FreeShippingThreshold.Sub(subtotal)
	if subtotal.GreaterThan(rules.FreeShippingThreshold) {
		shipping = decimal.Zero
		remaining = decimal.Zero
	}

	tax := subtotal.Mul(rules.TaxRate).Round(2)

	cod := decimal.Zero
	if method == entity.PaymentCOD {
		cod = rules.CODFee
	}

	return entity.PricingBreakdown{
		Subtotal:              subtotal,
		ShippingCost:          shipping,
		Tax:                   tax,
		CODSurcharge:          cod,
		Total:                 subtotal.Add(shipping).Add(tax).Add(cod),
		FreeShippingRemaining: remaining,
	}
}

// FreeShippingNotice is the hint shown while a non-empty cart pays shipping.
// A cart sitting exactly on the threshold has nothing left to add but still
// pays, so it is told to exceed the threshold instead.
func FreeShippingNotice(b entity.PricingBreakdown, rules Rules) string {
	if b.Subtotal.IsZero() || !b.ShippingCost.IsPositive() {
		return ""
	}
	if b.FreeShippingRemaining.IsPositive() {
		return fmt.Sprintf("Add ₹%s more to get free shipping", b.FreeShippingRemaining.StringFixed(2))
	}
	return fmt.Sprintf("Spend more than ₹%s to get free shipping", rules.FreeShippingThreshold.StringFixed(2))
}

// Package money holds the cart display arithmetic. All amounts are
// decimals; the gateway remains the source of truth for what the buyer is
// actually charged.
package money

import "github.com/shopspring/decimal"

// LineSubtotal is unit price times quantity.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if quantity < 0 {
		quantity = 0
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Totals bundles the derived cart amounts.
type Totals struct {
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	// ServerTotal is true when Total came from the gateway rather than
	// the local subtotal+tax sum.
	ServerTotal bool
}

// Compute derives tax and total from a subtotal. A non-nil serverTotal
// always wins over the locally computed sum; subtotal and tax are still
// recomputed locally for display.
func Compute(subtotal, taxRate decimal.Decimal, serverTotal *decimal.Decimal) Totals {
	tax := subtotal.Mul(taxRate)
	totals := Totals{
		Subtotal: subtotal,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
	if serverTotal != nil {
		totals.Total = *serverTotal
		totals.ServerTotal = true
	}
	return totals
}

// Format renders an amount with two decimal places for display.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

package cart

import (
	"github.com/shopspring/decimal"

	"github.com/amberfield/storefront-client/internal/gateway"
	"github.com/amberfield/storefront-client/pkg/money"
)

// Fallbacks applied when the gateway omits product data. One table, one
// place; nothing downstream ever sees a missing field.
const (
	FallbackProductName = "Unknown Product"
	FallbackImageURL    = "https://placehold.co/100x100?text=Product"
)

// Defaults parameterizes normalization.
type Defaults struct {
	ProductName string
	ImageURL    string
	TaxRate     decimal.Decimal
}

// DefaultsWithTaxRate returns the standard fallback table with the given
// tax rate.
func DefaultsWithTaxRate(rate decimal.Decimal) Defaults {
	return Defaults{
		ProductName: FallbackProductName,
		ImageURL:    FallbackImageURL,
		TaxRate:     rate,
	}
}

// Normalize maps a gateway cart payload into a snapshot, defaulting
// every field the server may omit:
//
//	missing product        -> fallback name, zero price, fallback image
//	missing product name   -> fallback name
//	missing product price  -> 0
//	missing image path     -> fallback image
//	quantity below 1       -> 1
//	missing tax rate       -> Defaults.TaxRate
//
// A server-supplied cart total takes precedence over the local sum.
func Normalize(payload *gateway.CartPayload, d Defaults) Snapshot {
	taxRate := d.TaxRate
	if payload != nil && payload.TaxRate != nil {
		taxRate = *payload.TaxRate
	}

	snap := emptySnapshot(taxRate)
	if payload == nil {
		return snap
	}

	snap.Items = make([]LineItem, 0, len(payload.Items))
	subtotal := decimal.Zero
	for _, raw := range payload.Items {
		item := normalizeItem(raw, d)
		subtotal = subtotal.Add(item.Subtotal)
		snap.Items = append(snap.Items, item)
	}

	totals := money.Compute(subtotal, taxRate, payload.Total)
	snap.Subtotal = totals.Subtotal
	snap.Tax = totals.Tax
	snap.Total = totals.Total
	snap.ServerTotal = totals.ServerTotal
	return snap
}

func normalizeItem(raw gateway.CartItemPayload, d Defaults) LineItem {
	name := d.ProductName
	price := decimal.Zero
	image := d.ImageURL

	if raw.Product != nil {
		if raw.Product.Name != "" {
			name = raw.Product.Name
		}
		if raw.Product.Price != nil {
			price = *raw.Product.Price
		}
		if raw.Product.MainImagePath != "" {
			image = raw.Product.MainImagePath
		}
	}

	quantity := raw.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return LineItem{
		ItemID:      raw.ID,
		ProductID:   raw.ProductID,
		ProductName: name,
		UnitPrice:   price,
		Quantity:    quantity,
		ImageURL:    image,
		Subtotal:    money.LineSubtotal(price, quantity),
	}
}

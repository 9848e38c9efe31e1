package cart

import (
	"github.com/shopspring/decimal"

	"github.com/amberfield/storefront-client/pkg/money"
)

// LineItem is one cart line as the client displays it. UnitPrice is the
// price snapshotted at add-time; the gateway re-prices at checkout.
type LineItem struct {
	ItemID      int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	ImageURL    string
	Subtotal    decimal.Decimal
}

// Snapshot is the client's in-memory view of the cart. Item order is the
// gateway's order and stays stable across local mutations.
type Snapshot struct {
	Items    []LineItem
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	// ServerTotal marks a gateway-supplied total. Local mutations drop
	// it and fall back to the computed sum until the next load.
	ServerTotal bool
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) indexOf(itemID int64) int {
	for i := range s.Items {
		if s.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}

// recompute rebuilds the aggregate amounts from the current items. Any
// previously server-supplied total is invalidated by the mutation that
// triggered the recompute.
func (s *Snapshot) recompute() {
	subtotal := decimal.Zero
	for i := range s.Items {
		subtotal = subtotal.Add(s.Items[i].Subtotal)
	}
	totals := money.Compute(subtotal, s.TaxRate, nil)
	s.Subtotal = totals.Subtotal
	s.Tax = totals.Tax
	s.Total = totals.Total
	s.ServerTotal = false
}

func emptySnapshot(taxRate decimal.Decimal) Snapshot {
	return Snapshot{
		Subtotal: decimal.Zero,
		TaxRate:  taxRate,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
}

package cart

import (
	"github.com/angelmondragon/ecofinds-backend/internal/products"
	"github.com/shopspring/decimal"
)

// Entry is a product snapshot copied at add time plus its quantity. Quantity is
// at least 1 for as long as the entry exists.
type Entry struct {
	products.Product
	Quantity int `json:"quantity"`
}

// LineTotal is price times quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// LineCO2 is co2Saved times quantity.
func (e Entry) LineCO2() decimal.Decimal {
	return e.CO2Saved.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Totals groups the derived cart aggregates.
type Totals struct {
	Count    int
	Subtotal decimal.Decimal
	CO2Saved decimal.Decimal
}

func totalsOf(entries []Entry) Totals {
	totals := Totals{Subtotal: decimal.Zero, CO2Saved: decimal.Zero}
	for _, entry := range entries {
		totals.Count += entry.Quantity
		totals.Subtotal = totals.Subtotal.Add(entry.LineTotal())
		totals.CO2Saved = totals.CO2Saved.Add(entry.LineCO2())
	}
	return totals
}

// View is a consistent read of the entries and the totals derived from them.
type View struct {
	Entries []Entry
	Totals  Totals
}

// Preview is the mini-cart view: the leading entries plus how many were left
// out. Totals cover the whole cart.
type Preview struct {
	Entries  []Entry
	Overflow int
	Totals   Totals
}

// Package money computes line and document totals with exact decimal arithmetic.
package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal places amounts are rounded to.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Line is the arithmetic view of a line item.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals are the derived amounts of a document. Tax and TaxRate stay zero
// for proposals.
type Totals struct {
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Round rounds d half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// LineTotal is quantity x unitPrice, unrounded.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums the line totals. An empty list yields zero.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return sum
}

// Tax is subtotal x rate / 100 rounded to Scale places.
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(rate).Div(hundred))
}

// InvoiceTotals returns subtotal, tax and total = subtotal + tax - discount.
// The total is not clamped and may be negative.
func InvoiceTotals(lines []Line, taxRate, discount decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	tax := Tax(subtotal, taxRate)
	return Totals{
		Subtotal: subtotal,
		TaxRate:  taxRate,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// ProposalTotals returns subtotal and total = subtotal - discount.
func ProposalTotals(lines []Line, discount decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	return Totals{
		Subtotal: subtotal,
		Tax:      decimal.Zero,
		TaxRate:  decimal.Zero,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

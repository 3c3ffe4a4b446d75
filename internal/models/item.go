package models

import (
	"github.com/diewo77/crm-documents/internal/money"
	"github.com/shopspring/decimal"
)

// LineItem is the billable row shared by proposal and invoice items.
// Total is always derived from Quantity and UnitPrice.
type LineItem struct {
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

// NewLineItem builds the item at position pos with its total computed.
func NewLineItem(pos int, description string, quantity int, unitPrice decimal.Decimal) LineItem {
	return LineItem{
		Position:    pos,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       money.LineTotal(quantity, unitPrice),
	}
}

// Line returns the arithmetic view of the item.
func (li LineItem) Line() money.Line {
	return money.Line{Quantity: li.Quantity, UnitPrice: li.UnitPrice}
}

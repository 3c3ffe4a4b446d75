package models

import (
	"time"

	"github.com/diewo77/crm-documents/internal/money"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled,
}

func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether normal flow ends at s. Overdue is not terminal:
// the invoice can still be paid or cancelled.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Invoice represents a billing invoice, numbered FAT-<year>-NNN.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Number string        `gorm:"size:50;not null;uniqueIndex" json:"number"`
	Title  string        `gorm:"size:255;not null" json:"title"`
	Status InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	IssueDate time.Time  `gorm:"not null" json:"issueDate"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	// PaidDate is set exactly when Status is paid.
	PaidDate *time.Time `json:"paidDate,omitempty"`
	Notes    string     `gorm:"type:text" json:"notes,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"taxRate"`
	Tax      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	ContactID  *uint     `gorm:"index" json:"contactId,omitempty"`
	Contact    *Contact  `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	ProposalID *uint     `gorm:"index" json:"proposalId,omitempty"`
	Proposal   *Proposal `gorm:"foreignKey:ProposalID;constraint:OnDelete:SET NULL" json:"proposal,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// InvoiceItem represents a line item on an invoice.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoiceId"`
	LineItem
}

func (i *Invoice) Lines() []money.Line {
	lines := make([]money.Line, len(i.Items))
	for n, it := range i.Items {
		lines[n] = it.Line()
	}
	return lines
}

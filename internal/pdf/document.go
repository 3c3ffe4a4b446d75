// Package pdf lays out proposals and invoices as PDF documents.
//
// Rendering is a pure function of a Document: callers resolve the contact
// and compute totals beforehand.
package pdf

import (
	"time"

	"github.com/diewo77/crm-documents/internal/models"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindProposal Kind = "proposal"
	KindInvoice  Kind = "invoice"
)

// Party is the client block.
type Party struct {
	Name  string
	Email string
}

type Line struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Document is the flattened input of the layout.
type Document struct {
	Kind   Kind
	Number string
	Title  string
	Status string
	Client *Party
	// IssuedAt is the creation date of a proposal or the issue date of an invoice.
	IssuedAt time.Time
	// DueAt is the valid-until date of a proposal or the due date of an invoice.
	DueAt *time.Time
	Lines []Line

	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Notes    string
}

// Options carries the static issuer identity and the label language.
type Options struct {
	IssuerName    string
	IssuerTagline string
	Lang          string
}

func party(c *models.Contact) *Party {
	if c == nil {
		return nil
	}
	return &Party{Name: c.FullName(), Email: c.Email}
}

// FromProposal flattens a proposal loaded with its items and contact.
func FromProposal(p *models.Proposal) Document {
	lines := make([]Line, len(p.Items))
	for i, it := range p.Items {
		lines[i] = Line{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total}
	}
	return Document{
		Kind:     KindProposal,
		Number:   p.Number,
		Title:    p.Title,
		Status:   string(p.Status),
		Client:   party(p.Contact),
		IssuedAt: p.CreatedAt,
		DueAt:    p.ValidUntil,
		Lines:    lines,
		Subtotal: p.Subtotal,
		Discount: p.Discount,
		Total:    p.Total,
		Notes:    p.Notes,
	}
}

// FromInvoice flattens an invoice loaded with its items and contact.
func FromInvoice(inv *models.Invoice) Document {
	lines := make([]Line, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = Line{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total}
	}
	return Document{
		Kind:     KindInvoice,
		Number:   inv.Number,
		Title:    inv.Title,
		Status:   string(inv.Status),
		Client:   party(inv.Contact),
		IssuedAt: inv.IssueDate,
		DueAt:    inv.DueDate,
		Lines:    lines,
		Subtotal: inv.Subtotal,
		TaxRate:  inv.TaxRate,
		Tax:      inv.Tax,
		Discount: inv.Discount,
		Total:    inv.Total,
		Notes:    inv.Notes,
	}
}

// ProposalPDF renders p.
func ProposalPDF(p *models.Proposal, opts Options) ([]byte, error) {
	return Render(FromProposal(p), opts)
}

// InvoicePDF renders inv.
func InvoicePDF(inv *models.Invoice, opts Options) ([]byte, error) {
	return Render(FromInvoice(inv), opts)
}

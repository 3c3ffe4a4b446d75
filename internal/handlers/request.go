package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/internal/services"
	"github.com/shopspring/decimal"
)

// flexID accepts 12, "12", "" and null. Empty values and 0 mean no reference.
type flexID struct{ v *uint }

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" || s == "0" {
		f.v = nil
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	id := uint(n)
	f.v = &id
	return nil
}

// flexInt accepts 3 and "3".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*f = flexInt(n)
	return nil
}

// flexDate accepts "2006-01-02", RFC 3339, "" and null.
type flexDate struct{ v *time.Time }

func (f *flexDate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		f.v = nil
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			f.v = &t
			return nil
		}
	}
	return fmt.Errorf("invalid date %s", b)
}

type itemRequest struct {
	Description string          `json:"description"`
	Quantity    flexInt         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func toItems(in []itemRequest) []services.ItemInput {
	out := make([]services.ItemInput, len(in))
	for i, it := range in {
		out[i] = services.ItemInput{Description: it.Description, Quantity: int(it.Quantity), UnitPrice: it.UnitPrice}
	}
	return out
}

type proposalRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	ValidUntil  flexDate        `json:"validUntil"`
	Notes       string          `json:"notes"`
	Discount    decimal.Decimal `json:"discount"`
	ContactID   flexID          `json:"contactId"`
	DealID      flexID          `json:"dealId"`
	Items       []itemRequest   `json:"items"`
}

func (r proposalRequest) input() services.ProposalInput {
	return services.ProposalInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      models.ProposalStatus(r.Status),
		ValidUntil:  r.ValidUntil.v,
		Notes:       r.Notes,
		Discount:    r.Discount,
		ContactID:   r.ContactID.v,
		DealID:      r.DealID.v,
		Items:       toItems(r.Items),
	}
}

type invoiceRequest struct {
	Title      string           `json:"title"`
	Status     string           `json:"status"`
	DueDate    flexDate         `json:"dueDate"`
	PaidDate   flexDate         `json:"paidDate"`
	Notes      string           `json:"notes"`
	TaxRate    *decimal.Decimal `json:"taxRate"`
	Discount   decimal.Decimal  `json:"discount"`
	ContactID  flexID           `json:"contactId"`
	ProposalID flexID           `json:"proposalId"`
	Items      []itemRequest    `json:"items"`
}

func (r invoiceRequest) input() services.InvoiceInput {
	return services.InvoiceInput{
		Title:      r.Title,
		Status:     models.InvoiceStatus(r.Status),
		DueDate:    r.DueDate.v,
		PaidDate:   r.PaidDate.v,
		Notes:      r.Notes,
		TaxRate:    r.TaxRate,
		Discount:   r.Discount,
		ContactID:  r.ContactID.v,
		ProposalID: r.ProposalID.v,
		Items:      toItems(r.Items),
	}
}

type sendRequest struct {
	To         string            `json:"to"`
	Subject    string            `json:"subject"`
	HTML       string            `json:"html"`
	ContactID  flexID            `json:"contactId"`
	TemplateID flexID            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
}

func (r sendRequest) input() services.SendInput {
	return services.SendInput{
		To:         r.To,
		Subject:    r.Subject,
		HTML:       r.HTML,
		ContactID:  r.ContactID.v,
		TemplateID: r.TemplateID.v,
		Variables:  r.Variables,
	}
}

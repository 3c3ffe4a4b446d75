package models

import (
	"time"

	"github.com/diewo77/crm-documents/internal/money"
	"github.com/shopspring/decimal"
)

// ProposalStatus represents the status of a proposal.
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// ProposalStatuses lists every accepted value, in lifecycle order.
var ProposalStatuses = []ProposalStatus{
	ProposalStatusDraft, ProposalStatusSent, ProposalStatusAccepted, ProposalStatusRejected,
}

func (s ProposalStatus) Valid() bool {
	for _, v := range ProposalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether normal flow ends at s.
func (s ProposalStatus) Terminal() bool {
	return s == ProposalStatusAccepted || s == ProposalStatusRejected
}

// Proposal is a quote sent to a contact, numbered PRO-<year>-NNN.
type Proposal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Number      string         `gorm:"size:50;not null;uniqueIndex" json:"number"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Status      ProposalStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	ValidUntil  *time.Time     `json:"validUntil,omitempty"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	ContactID *uint    `gorm:"index" json:"contactId,omitempty"`
	Contact   *Contact `gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	DealID    *uint    `gorm:"index" json:"dealId,omitempty"`
	Deal      *Deal    `gorm:"foreignKey:DealID;constraint:OnDelete:SET NULL" json:"deal,omitempty"`

	Items []ProposalItem `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"items"`
}

// ProposalItem is a line of a proposal.
type ProposalItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProposalID uint `gorm:"index;not null" json:"proposalId"`
	LineItem
}

// Lines returns the items in arithmetic form.
func (p *Proposal) Lines() []money.Line {
	lines := make([]money.Line, len(p.Items))
	for i, it := range p.Items {
		lines[i] = it.Line()
	}
	return lines
}

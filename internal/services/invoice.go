package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/diewo77/crm-documents/i18n"
	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/internal/money"
	"github.com/diewo77/crm-documents/internal/numbering"
	"github.com/diewo77/crm-documents/internal/pdf"
	"github.com/diewo77/crm-documents/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var maxTaxRate = decimal.NewFromInt(100)

// InvoiceInput is the header and item list of an invoice write.
// A nil TaxRate means the default rate on create and the stored rate on update.
type InvoiceInput struct {
	Title      string               `json:"title"`
	Status     models.InvoiceStatus `json:"status,omitempty"`
	DueDate    *time.Time           `json:"dueDate,omitempty"`
	PaidDate   *time.Time           `json:"paidDate,omitempty"`
	Notes      string               `json:"notes,omitempty"`
	TaxRate    *decimal.Decimal     `json:"taxRate,omitempty"`
	Discount   decimal.Decimal      `json:"discount"`
	ContactID  *uint                `json:"contactId,omitempty"`
	ProposalID *uint                `json:"proposalId,omitempty"`
	Items      []ItemInput          `json:"items"`
}

func (in *InvoiceInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Notes = strings.TrimSpace(in.Notes)
	trimItems(in.Items)
}

// round brings amounts and the rate to the stored precision.
func (in *InvoiceInput) round() {
	in.Discount = money.Round(in.Discount)
	if in.TaxRate != nil {
		r := money.Round(*in.TaxRate)
		in.TaxRate = &r
	}
	roundItems(in.Items)
}

func (in *InvoiceInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.NonNegative("discount", in.Discount, v)
	if in.TaxRate != nil {
		validation.Range("taxRate", *in.TaxRate, decimal.Zero, maxTaxRate, v)
	}
	if in.Status != "" && !in.Status.Valid() {
		v.Add("status", "invalid_value")
	}
	validateItems(in.Items, v)
	return v
}

// InvoiceService manages invoice aggregates.
type InvoiceService struct {
	db      *gorm.DB
	numbers *numbering.Allocator
	cfg     Settings
	log     *slog.Logger
}

func NewInvoiceService(db *gorm.DB, cfg Settings) *InvoiceService {
	cfg = cfg.withDefaults()
	return &InvoiceService{db: db, numbers: cfg.allocator(), cfg: cfg, log: cfg.Logger.With("kind", "invoice")}
}

func (s *InvoiceService) List(ctx context.Context, f ListFilter) ([]models.Invoice, error) {
	var out []models.Invoice
	q := f.apply(s.db.WithContext(ctx))
	if err := q.Preload("Contact").Preload("Proposal").Preload("Items", orderedItems).
		Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, classify("list invoices", err)
	}
	return out, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Contact").Preload("Proposal").Preload("Items", orderedItems).
		First(&inv, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("invoice", id)
		}
		return nil, classify("load invoice", err)
	}
	return &inv, nil
}

// Create validates in, allocates the next FAT number and stores header and
// items in one transaction. The status is always draft and the issue date now.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	in.normalize()
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	in.round()
	rate := *s.cfg.DefaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	items := lineItems(in.Items)
	totals := money.InvoiceTotals(lines(items), rate, in.Discount)
	inv := models.Invoice{
		Title:      in.Title,
		Status:     models.InvoiceStatusDraft,
		IssueDate:  s.cfg.Now(),
		DueDate:    in.DueDate,
		Notes:      in.Notes,
		Subtotal:   totals.Subtotal,
		TaxRate:    totals.TaxRate,
		Tax:        totals.Tax,
		Discount:   totals.Discount,
		Total:      totals.Total,
		ContactID:  in.ContactID,
		ProposalID: in.ProposalID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(tx, &in); err != nil {
			return err
		}
		number, err := s.numbers.Next(tx, numbering.Invoices)
		if err != nil {
			return err
		}
		inv.Number = number
		if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
			return err
		}
		return insertItems(tx, invoiceItems(inv.ID, items))
	})
	if err != nil {
		return nil, classify("create invoice", err)
	}
	s.log.InfoContext(ctx, "invoice created", "id", inv.ID, "number", inv.Number, "total", inv.Total.String())
	s.cfg.Metrics.DocumentWritten("invoice", "create")
	return s.Get(ctx, inv.ID)
}

// Update replaces header fields and the whole item set, then applies the
// status. paidDate follows the status: it is stamped when the invoice becomes
// paid, kept while it stays paid and cleared when it leaves paid. A caller
// supplied paidDate wins whenever the resulting status is paid.
func (s *InvoiceService) Update(ctx context.Context, id uint, in InvoiceInput) (*models.Invoice, error) {
	in.normalize()
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	in.round()
	items := lineItems(in.Items)
	var totals money.Totals
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("invoice", id)
			}
			return err
		}
		if err := s.checkRefs(tx, &in); err != nil {
			return err
		}
		rate := inv.TaxRate
		if in.TaxRate != nil {
			rate = *in.TaxRate
		}
		totals = money.InvoiceTotals(lines(items), rate, in.Discount)

		previous := inv.Status
		if in.Status != "" {
			inv.Status = in.Status
		}
		inv.PaidDate = s.paidDate(previous, inv.Status, inv.PaidDate, in.PaidDate)

		inv.Title = in.Title
		inv.DueDate = in.DueDate
		inv.Notes = in.Notes
		inv.ContactID = in.ContactID
		inv.ProposalID = in.ProposalID
		inv.Subtotal = totals.Subtotal
		inv.TaxRate = totals.TaxRate
		inv.Tax = totals.Tax
		inv.Discount = totals.Discount
		inv.Total = totals.Total
		if err := replaceItems(tx, "invoice_id", inv.ID, invoiceItems(inv.ID, items)); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&inv).Error
	})
	if err != nil {
		return nil, classify("update invoice", err)
	}
	s.log.InfoContext(ctx, "invoice updated", "id", id, "items", len(items), "total", totals.Total.String())
	s.cfg.Metrics.DocumentWritten("invoice", "update")
	return s.Get(ctx, id)
}

func (s *InvoiceService) paidDate(from, to models.InvoiceStatus, current, supplied *time.Time) *time.Time {
	switch {
	case to != models.InvoiceStatusPaid:
		return nil
	case supplied != nil:
		return supplied
	case from != models.InvoiceStatusPaid || current == nil:
		now := s.cfg.Now()
		return &now
	default:
		return current
	}
}

func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Invoice{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("invoice", id)
		}
		return nil
	})
	if err != nil {
		return classify("delete invoice", err)
	}
	s.log.InfoContext(ctx, "invoice deleted", "id", id)
	s.cfg.Metrics.DocumentWritten("invoice", "delete")
	return nil
}

// ImportFromProposal prefills an unsaved invoice from a proposal: prefixed
// title, contact, default tax rate, discount and items. The proposal is not
// modified.
func (s *InvoiceService) ImportFromProposal(ctx context.Context, proposalID uint) (*InvoiceInput, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).Preload("Items", orderedItems).First(&p, proposalID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("proposal", proposalID)
		}
		return nil, classify("load proposal", err)
	}
	rate := *s.cfg.DefaultTaxRate
	items := make([]ItemInput, len(p.Items))
	for i, it := range p.Items {
		items[i] = ItemInput{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	id := p.ID
	return &InvoiceInput{
		Title:      i18n.T(s.cfg.PDF.Lang, "invoice_from") + " - " + p.Title,
		ContactID:  p.ContactID,
		ProposalID: &id,
		TaxRate:    &rate,
		Discount:   p.Discount,
		Items:      items,
	}, nil
}

// Revenue sums the totals of paid invoices.
func (s *InvoiceService) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceStatusPaid).
		Pluck("total", &totals).Error
	if err != nil {
		return decimal.Zero, classify("revenue", err)
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}

func (s *InvoiceService) Render(inv *models.Invoice) ([]byte, error) {
	start := time.Now()
	b, err := pdf.InvoicePDF(inv, s.cfg.PDF)
	if err != nil {
		return nil, &Error{Kind: ErrDependency, Message: "render invoice " + inv.Number, Err: err}
	}
	s.cfg.Metrics.PDFRendered("invoice", time.Since(start))
	return b, nil
}

func (s *InvoiceService) checkRefs(tx *gorm.DB, in *InvoiceInput) error {
	v := validation.Violations{}
	if err := checkRef(tx, &models.Contact{}, "contactId", in.ContactID, v); err != nil {
		return err
	}
	if err := checkRef(tx, &models.Proposal{}, "proposalId", in.ProposalID, v); err != nil {
		return err
	}
	if !v.Empty() {
		return invalid(v)
	}
	return nil
}

func invoiceItems(id uint, items []models.LineItem) []models.InvoiceItem {
	rows := make([]models.InvoiceItem, len(items))
	for i, li := range items {
		rows[i] = models.InvoiceItem{InvoiceID: id, LineItem: li}
	}
	return rows
}

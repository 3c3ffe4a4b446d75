package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/internal/money"
	"github.com/diewo77/crm-documents/internal/numbering"
	"github.com/diewo77/crm-documents/internal/pdf"
	"github.com/diewo77/crm-documents/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProposalInput is the header and item list of a proposal write.
// Status is ignored on create and optional on update.
type ProposalInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Status      models.ProposalStatus `json:"status,omitempty"`
	ValidUntil  *time.Time            `json:"validUntil,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	Discount    decimal.Decimal       `json:"discount"`
	ContactID   *uint                 `json:"contactId,omitempty"`
	DealID      *uint                 `json:"dealId,omitempty"`
	Items       []ItemInput           `json:"items"`
}

func (in *ProposalInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Notes = strings.TrimSpace(in.Notes)
	trimItems(in.Items)
}

func (in *ProposalInput) round() {
	in.Discount = money.Round(in.Discount)
	roundItems(in.Items)
}

func (in *ProposalInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.NonNegative("discount", in.Discount, v)
	if in.Status != "" && !in.Status.Valid() {
		v.Add("status", "invalid_value")
	}
	validateItems(in.Items, v)
	return v
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Status    string
	ContactID *uint
}

func (f ListFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContactID != nil {
		q = q.Where("contact_id = ?", *f.ContactID)
	}
	return q
}

// ProposalService manages proposal aggregates.
type ProposalService struct {
	db      *gorm.DB
	numbers *numbering.Allocator
	cfg     Settings
	log     *slog.Logger
}

func NewProposalService(db *gorm.DB, cfg Settings) *ProposalService {
	cfg = cfg.withDefaults()
	return &ProposalService{db: db, numbers: cfg.allocator(), cfg: cfg, log: cfg.Logger.With("kind", "proposal")}
}

func (s *ProposalService) List(ctx context.Context, f ListFilter) ([]models.Proposal, error) {
	var out []models.Proposal
	q := f.apply(s.db.WithContext(ctx))
	if err := q.Preload("Contact").Preload("Deal").Preload("Items", orderedItems).
		Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, classify("list proposals", err)
	}
	return out, nil
}

func (s *ProposalService) Get(ctx context.Context, id uint) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).
		Preload("Contact").Preload("Deal").Preload("Items", orderedItems).
		First(&p, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("proposal", id)
		}
		return nil, classify("load proposal", err)
	}
	return &p, nil
}

// Create validates in, allocates the next PRO number and stores header and
// items in one transaction. The status is always draft.
func (s *ProposalService) Create(ctx context.Context, in ProposalInput) (*models.Proposal, error) {
	in.normalize()
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	in.round()
	items := lineItems(in.Items)
	totals := money.ProposalTotals(lines(items), in.Discount)
	p := models.Proposal{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.ProposalStatusDraft,
		ValidUntil:  in.ValidUntil,
		Notes:       in.Notes,
		Subtotal:    totals.Subtotal,
		Discount:    totals.Discount,
		Total:       totals.Total,
		ContactID:   in.ContactID,
		DealID:      in.DealID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(tx, &in); err != nil {
			return err
		}
		number, err := s.numbers.Next(tx, numbering.Proposals)
		if err != nil {
			return err
		}
		p.Number = number
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		return insertItems(tx, proposalItems(p.ID, items))
	})
	if err != nil {
		return nil, classify("create proposal", err)
	}
	s.log.InfoContext(ctx, "proposal created", "id", p.ID, "number", p.Number, "total", p.Total.String())
	s.cfg.Metrics.DocumentWritten("proposal", "create")
	return s.Get(ctx, p.ID)
}

// Update replaces header fields and the whole item set. The number never changes.
func (s *ProposalService) Update(ctx context.Context, id uint, in ProposalInput) (*models.Proposal, error) {
	in.normalize()
	if v := in.validate(); !v.Empty() {
		return nil, invalid(v)
	}
	in.round()
	items := lineItems(in.Items)
	totals := money.ProposalTotals(lines(items), in.Discount)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Proposal
		if err := tx.First(&p, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("proposal", id)
			}
			return err
		}
		if err := s.checkRefs(tx, &in); err != nil {
			return err
		}
		p.Title = in.Title
		p.Description = in.Description
		p.ValidUntil = in.ValidUntil
		p.Notes = in.Notes
		p.ContactID = in.ContactID
		p.DealID = in.DealID
		p.Subtotal = totals.Subtotal
		p.Discount = totals.Discount
		p.Total = totals.Total
		if in.Status != "" {
			p.Status = in.Status
		}
		if err := replaceItems(tx, "proposal_id", p.ID, proposalItems(p.ID, items)); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&p).Error
	})
	if err != nil {
		return nil, classify("update proposal", err)
	}
	s.log.InfoContext(ctx, "proposal updated", "id", id, "items", len(items), "total", totals.Total.String())
	s.cfg.Metrics.DocumentWritten("proposal", "update")
	return s.Get(ctx, id)
}

// Delete removes the proposal and its items. Invoices imported from it keep
// existing with their link cleared.
func (s *ProposalService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("proposal_id = ?", id).Delete(&models.ProposalItem{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Model(&models.Invoice{}).Where("proposal_id = ?", id).Update("proposal_id", nil).Error; err != nil {
			return err
		}
		res = tx.Delete(&models.Proposal{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("proposal", id)
		}
		return nil
	})
	if err != nil {
		return classify("delete proposal", err)
	}
	s.log.InfoContext(ctx, "proposal deleted", "id", id)
	s.cfg.Metrics.DocumentWritten("proposal", "delete")
	return nil
}

// Render produces the PDF of a loaded proposal.
func (s *ProposalService) Render(p *models.Proposal) ([]byte, error) {
	start := time.Now()
	b, err := pdf.ProposalPDF(p, s.cfg.PDF)
	if err != nil {
		return nil, &Error{Kind: ErrDependency, Message: "render proposal " + p.Number, Err: err}
	}
	s.cfg.Metrics.PDFRendered("proposal", time.Since(start))
	return b, nil
}

func (s *ProposalService) checkRefs(tx *gorm.DB, in *ProposalInput) error {
	v := validation.Violations{}
	if err := checkRef(tx, &models.Contact{}, "contactId", in.ContactID, v); err != nil {
		return err
	}
	if err := checkRef(tx, &models.Deal{}, "dealId", in.DealID, v); err != nil {
		return err
	}
	if !v.Empty() {
		return invalid(v)
	}
	return nil
}

func proposalItems(id uint, items []models.LineItem) []models.ProposalItem {
	rows := make([]models.ProposalItem, len(items))
	for i, li := range items {
		rows[i] = models.ProposalItem{ProposalID: id, LineItem: li}
	}
	return rows
}

package services

import (
	"log/slog"
	"time"

	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/metrics"
	"github.com/diewo77/crm-documents/internal/money"
	"github.com/diewo77/crm-documents/internal/numbering"
	"github.com/diewo77/crm-documents/internal/pdf"
	"github.com/shopspring/decimal"
)

// Settings are the collaborators shared by the document services.
type Settings struct {
	// DefaultTaxRate applies to invoices created without a rate; nil means 23.
	DefaultTaxRate *decimal.Decimal
	PDF            pdf.Options
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	// Now is the clock used for numbering years, issue and paid dates.
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Logger == nil {
		s.Logger = logging.Discard()
	}
	rate := decimal.NewFromInt(23)
	if s.DefaultTaxRate != nil {
		rate = money.Round(*s.DefaultTaxRate)
	}
	s.DefaultTaxRate = &rate
	if s.PDF.IssuerName == "" {
		s.PDF.IssuerName = "CRM Pro"
	}
	return s
}

func (s Settings) allocator() *numbering.Allocator {
	return numbering.NewAllocator(s.Now)
}

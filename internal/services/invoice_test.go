package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/internal/pdf"
	"gorm.io/gorm"
)

func TestInvoiceCreateDefaultsTaxRate(t *testing.T) {
	db := setupTestDB(t)
	contact := seedContact(t, db)
	svc := NewInvoiceService(db, testSettings())

	inv, err := svc.Create(context.Background(), InvoiceInput{
		Title:     "Website redesign",
		Status:    models.InvoiceStatusPaid,
		ContactID: &contact.ID,
		Items:     designItems(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Number != "FAT-2026-001" {
		t.Fatalf("number = %q, want FAT-2026-001", inv.Number)
	}
	if inv.Status != models.InvoiceStatusDraft {
		t.Fatalf("new invoices start as draft, got %q", inv.Status)
	}
	if !inv.IssueDate.Equal(testNow) {
		t.Fatalf("issue date = %v, want %v", inv.IssueDate, testNow)
	}
	if inv.PaidDate != nil {
		t.Fatalf("paid date should be empty on create")
	}
	assertAmount(t, "subtotal", inv.Subtotal, "1000")
	assertAmount(t, "taxRate", inv.TaxRate, "23")
	assertAmount(t, "tax", inv.Tax, "230")
	assertAmount(t, "total", inv.Total, "1180")
}

func TestInvoiceCreateRateSettings(t *testing.T) {
	db := setupTestDB(t)
	cfg := testSettings()
	cfg.DefaultTaxRate = ptr(dec("6"))
	svc := NewInvoiceService(db, cfg)
	ctx := context.Background()

	inv, err := svc.Create(ctx, InvoiceInput{Title: "Default", Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertAmount(t, "configured rate", inv.TaxRate, "6")
	assertAmount(t, "tax", inv.Tax, "60")

	exempt, err := svc.Create(ctx, InvoiceInput{Title: "Exempt", TaxRate: ptr(dec("0")), Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertAmount(t, "explicit zero rate", exempt.TaxRate, "0")
	assertAmount(t, "total", exempt.Total, "1000")
	if exempt.Number != "FAT-2026-002" {
		t.Fatalf("number = %q", exempt.Number)
	}
}

func TestInvoiceCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	cases := []struct {
		name  string
		in    InvoiceInput
		field string
		code  string
	}{
		{"missing title", InvoiceInput{}, "title", "required"},
		{"rate above 100", InvoiceInput{Title: "x", TaxRate: ptr(dec("100.5"))}, "taxRate", "out_of_range"},
		{"negative rate", InvoiceInput{Title: "x", TaxRate: ptr(dec("-1"))}, "taxRate", "out_of_range"},
		{"negative discount", InvoiceInput{Title: "x", Discount: dec("-0.01")}, "discount", "must_not_be_negative"},
		{"discount rounding to zero", InvoiceInput{Title: "x", Discount: dec("-0.004")}, "discount", "must_not_be_negative"},
		{"price rounding to zero", InvoiceInput{Title: "x", Items: []ItemInput{{Description: "a", Quantity: 1, UnitPrice: dec("-0.004")}}}, "items[0].unitPrice", "must_not_be_negative"},
		{"rate rounding to 100", InvoiceInput{Title: "x", TaxRate: ptr(dec("100.004"))}, "taxRate", "out_of_range"},
		{"zero quantity", InvoiceInput{Title: "x", Items: []ItemInput{{Description: "a", UnitPrice: dec("1")}}}, "items[0].quantity", "must_be_positive"},
		{"unknown contact", InvoiceInput{Title: "x", ContactID: ptr(uint(7))}, "contactId", "not_found"},
		{"unknown proposal", InvoiceInput{Title: "x", ProposalID: ptr(uint(7))}, "proposalId", "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := Fields(err)[tc.field]; got != tc.code {
				t.Fatalf("%s = %q, want %q (all: %v)", tc.field, got, tc.code, Fields(err))
			}
		})
	}
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatalf("no invoice should be stored, got %d", count)
	}
}

func TestInvoiceUpdateRecomputesAndReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	inv, err := svc.Create(ctx, InvoiceInput{Title: "Site", Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, inv.ID, InvoiceInput{
		Title:    "Hosting",
		Discount: dec("50"),
		Items:    []ItemInput{{Description: "Hosting", Quantity: 12, UnitPrice: dec("10")}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertAmount(t, "subtotal", updated.Subtotal, "120")
	assertAmount(t, "kept rate", updated.TaxRate, "23")
	assertAmount(t, "tax", updated.Tax, "27.6")
	assertAmount(t, "total", updated.Total, "97.6")
	if len(updated.Items) != 1 || updated.Items[0].Description != "Hosting" {
		t.Fatalf("old items should be gone: %+v", updated.Items)
	}
	if updated.Number != inv.Number || !updated.IssueDate.Equal(inv.IssueDate) {
		t.Fatalf("number and issue date must not change")
	}
	var stored int64
	db.Model(&models.InvoiceItem{}).Count(&stored)
	if stored != 1 {
		t.Fatalf("expected 1 stored item, got %d", stored)
	}
}

func TestInvoiceTaxRounding(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	inv, err := svc.Create(context.Background(), InvoiceInput{
		Title:   "Rounding",
		TaxRate: ptr(dec("23")),
		Items:   []ItemInput{{Description: "Hour", Quantity: 3, UnitPrice: dec("10.005")}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 10.005 is stored as 10.01
	assertAmount(t, "unit price", inv.Items[0].UnitPrice, "10.01")
	assertAmount(t, "subtotal", inv.Subtotal, "30.03")
	assertAmount(t, "tax", inv.Tax, "6.91")
	assertAmount(t, "total", inv.Total, "36.94")
}

func TestInvoiceTaxRateStoredAtTwoDecimals(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	inv, err := svc.Create(ctx, InvoiceInput{
		Title:   "Rate",
		TaxRate: ptr(dec("23.456")),
		Items:   []ItemInput{{Description: "Build", Quantity: 1, UnitPrice: dec("1000.004")}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertAmount(t, "taxRate", inv.TaxRate, "23.46")
	assertAmount(t, "tax", inv.Tax, "234.6")
	assertAmount(t, "total", inv.Total, "1234.6")

	updated, err := svc.Update(ctx, inv.ID, InvoiceInput{
		Title:   "Rate",
		TaxRate: ptr(dec("6.125")),
		Items:   []ItemInput{{Description: "Build", Quantity: 1, UnitPrice: dec("1000")}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertAmount(t, "taxRate", updated.TaxRate, "6.13")
	assertAmount(t, "tax", updated.Tax, "61.3")
}

func TestInvoiceFailedUpdateRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	inv, err := svc.Create(ctx, InvoiceInput{Title: "A", Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = db.Callback().Update().Before("gorm:update").Register("test:fail_invoice", func(tx *gorm.DB) {
		if tx.Statement.Table == "invoices" {
			tx.AddError(errors.New("boom"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = svc.Update(ctx, inv.ID, InvoiceInput{
		Title: "B",
		Items: []ItemInput{{Description: "Hosting", Quantity: 12, UnitPrice: dec("10")}},
	})
	if !errors.Is(err, ErrDependency) {
		t.Fatalf("expected dependency failure, got %v", err)
	}
	if err := db.Callback().Update().Remove("test:fail_invoice"); err != nil {
		t.Fatalf("remove callback: %v", err)
	}

	got, err := svc.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "A" || len(got.Items) != 2 {
		t.Fatalf("header or items changed after failed update: title=%q items=%d", got.Title, len(got.Items))
	}
	assertAmount(t, "subtotal", got.Subtotal, "1000")
	var stored int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&stored)
	if stored != 2 {
		t.Fatalf("expected the 2 original items, got %d", stored)
	}
}

func TestInvoicePaidDate(t *testing.T) {
	db := setupTestDB(t)
	cfg := testSettings()
	clock := testNow
	cfg.Now = func() time.Time { return clock }
	svc := NewInvoiceService(db, cfg)
	ctx := context.Background()
	inv, err := svc.Create(ctx, InvoiceInput{Title: "Site", Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	base := InvoiceInput{Title: "Site", Items: designItems()}

	// draft straight to paid is allowed and stamps now
	paid := base
	paid.Status = models.InvoiceStatusPaid
	got, err := svc.Update(ctx, inv.ID, paid)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if got.PaidDate == nil || !got.PaidDate.Equal(testNow) {
		t.Fatalf("paid date = %v, want %v", got.PaidDate, testNow)
	}

	// staying paid keeps the original date
	clock = testNow.Add(48 * time.Hour)
	got, err = svc.Update(ctx, inv.ID, paid)
	if err != nil {
		t.Fatalf("update paid: %v", err)
	}
	if got.PaidDate == nil || !got.PaidDate.Equal(testNow) {
		t.Fatalf("paid date should be kept, got %v", got.PaidDate)
	}

	// an update without status keeps paid and its date
	got, err = svc.Update(ctx, inv.ID, base)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != models.InvoiceStatusPaid || got.PaidDate == nil {
		t.Fatalf("status and paid date should be kept, got %q %v", got.Status, got.PaidDate)
	}

	// leaving paid clears it
	sent := base
	sent.Status = models.InvoiceStatusSent
	got, err = svc.Update(ctx, inv.ID, sent)
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if got.PaidDate != nil {
		t.Fatalf("paid date should be cleared, got %v", got.PaidDate)
	}

	// a supplied date wins
	supplied := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	paid.PaidDate = &supplied
	got, err = svc.Update(ctx, inv.ID, paid)
	if err != nil {
		t.Fatalf("mark paid again: %v", err)
	}
	if got.PaidDate == nil || !got.PaidDate.Equal(supplied) {
		t.Fatalf("paid date = %v, want %v", got.PaidDate, supplied)
	}
}

func TestInvoiceNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	if _, err := svc.Get(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Update(ctx, 9, InvoiceInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.ImportFromProposal(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("import: %v", err)
	}
}

func TestInvoiceDeleteRemovesItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	inv, err := svc.Create(ctx, InvoiceInput{Title: "Site", Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, inv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var items int64
	db.Model(&models.InvoiceItem{}).Count(&items)
	if items != 0 {
		t.Fatalf("items left: %d", items)
	}
	if _, err := svc.Get(ctx, inv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestImportFromProposal(t *testing.T) {
	db := setupTestDB(t)
	contact := seedContact(t, db)
	ctx := context.Background()
	proposals := NewProposalService(db, testSettings())
	invoices := NewInvoiceService(db, testSettings())
	p, err := proposals.Create(ctx, ProposalInput{
		Title:     "Site",
		Discount:  dec("100"),
		ContactID: &contact.ID,
		Items:     designItems(),
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	draft, err := invoices.ImportFromProposal(ctx, p.ID)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if draft.Title != "Fatura - Site" {
		t.Fatalf("title = %q", draft.Title)
	}
	if draft.ContactID == nil || *draft.ContactID != contact.ID {
		t.Fatalf("contact not carried: %v", draft.ContactID)
	}
	if draft.ProposalID == nil || *draft.ProposalID != p.ID {
		t.Fatalf("proposal link missing")
	}
	assertAmount(t, "taxRate", *draft.TaxRate, "23")
	assertAmount(t, "discount", draft.Discount, "100")
	if len(draft.Items) != 2 || draft.Items[0].Description != "Design" || draft.Items[1].Description != "SEO" {
		t.Fatalf("items = %+v", draft.Items)
	}

	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatalf("import must not store an invoice")
	}

	inv, err := invoices.Create(ctx, *draft)
	if err != nil {
		t.Fatalf("create from import: %v", err)
	}
	assertAmount(t, "total", inv.Total, "1130")
	if inv.Proposal == nil || inv.Proposal.Number != p.Number {
		t.Fatalf("proposal not linked: %+v", inv.Proposal)
	}
}

func TestImportTitleFollowsLanguage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	cfg := testSettings()
	cfg.PDF = pdf.Options{Lang: "en"}
	p, err := NewProposalService(db, cfg).Create(ctx, ProposalInput{Title: "Site"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	draft, err := NewInvoiceService(db, cfg).ImportFromProposal(ctx, p.ID)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if draft.Title != "Invoice - Site" {
		t.Fatalf("title = %q", draft.Title)
	}
}

func TestInvoiceRevenue(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	total, err := svc.Revenue(ctx)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	assertAmount(t, "empty revenue", total, "0")

	for i, status := range []models.InvoiceStatus{models.InvoiceStatusPaid, models.InvoiceStatusSent, models.InvoiceStatusPaid} {
		inv, err := svc.Create(ctx, InvoiceInput{Title: "Site", Items: designItems()})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if _, err := svc.Update(ctx, inv.ID, InvoiceInput{Title: "Site", Status: status, Items: designItems()}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	total, err = svc.Revenue(ctx)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	assertAmount(t, "revenue", total, "2360")
}

func TestInvoiceListFilter(t *testing.T) {
	db := setupTestDB(t)
	contact := seedContact(t, db)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	if _, err := svc.Create(ctx, InvoiceInput{Title: "A", ContactID: &contact.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, InvoiceInput{Title: "B"}); err != nil {
		t.Fatal(err)
	}
	all, err := svc.List(ctx, ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("list all = %d, %v", len(all), err)
	}
	mine, err := svc.List(ctx, ListFilter{ContactID: &contact.ID})
	if err != nil || len(mine) != 1 || mine[0].Title != "A" {
		t.Fatalf("list by contact = %+v, %v", mine, err)
	}
	drafts, err := svc.List(ctx, ListFilter{Status: "paid"})
	if err != nil || len(drafts) != 0 {
		t.Fatalf("list paid = %d, %v", len(drafts), err)
	}
}

func TestInvoiceRender(t *testing.T) {
	db := setupTestDB(t)
	contact := seedContact(t, db)
	svc := NewInvoiceService(db, testSettings())
	ctx := context.Background()
	due := testNow.AddDate(0, 0, 30)
	created, err := svc.Create(ctx, InvoiceInput{Title: "Site", DueDate: &due, ContactID: &contact.ID, Discount: dec("5"), Items: designItems()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, status := range []models.InvoiceStatus{
		models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusPaid,
		models.InvoiceStatusOverdue, models.InvoiceStatusCancelled,
	} {
		inv, err := svc.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		inv.Status = status
		b, err := svc.Render(inv)
		if err != nil {
			t.Fatalf("render %s: %v", status, err)
		}
		if !bytes.HasPrefix(b, []byte("%PDF")) {
			t.Fatalf("render %s: not a PDF", status)
		}
	}
}

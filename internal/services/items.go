package services

import (
	"strings"

	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/internal/money"
	"github.com/diewo77/crm-documents/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemInput is one submitted line. Any total sent by the client is ignored.
type ItemInput struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func trimItems(items []ItemInput) {
	for i := range items {
		items[i].Description = strings.TrimSpace(items[i].Description)
	}
}

// roundItems runs after validation so that sign checks see the submitted price.
func roundItems(items []ItemInput) {
	for i := range items {
		items[i].UnitPrice = money.Round(items[i].UnitPrice)
	}
}

func validateItems(items []ItemInput, v validation.Violations) {
	for i, it := range items {
		validation.Required(validation.Item("items", i, "description"), it.Description, v)
		validation.MinInt(validation.Item("items", i, "quantity"), it.Quantity, 1, v)
		validation.NonNegative(validation.Item("items", i, "unitPrice"), it.UnitPrice, v)
	}
}

// lineItems builds the stored items in submission order.
func lineItems(items []ItemInput) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, it := range items {
		out[i] = models.NewLineItem(i, it.Description, it.Quantity, it.UnitPrice)
	}
	return out
}

func lines(items []models.LineItem) []money.Line {
	out := make([]money.Line, len(items))
	for i, li := range items {
		out[i] = li.Line()
	}
	return out
}

// replaceItems deletes every item owned by ownerID and inserts rows in their
// place. It must run inside the transaction that saves the header so that
// readers never see the old header with the new items or an empty item set.
func replaceItems[T any](tx *gorm.DB, ownerColumn string, ownerID uint, rows []T) error {
	if err := tx.Where(ownerColumn+" = ?", ownerID).Delete(new(T)).Error; err != nil {
		return err
	}
	return insertItems(tx, rows)
}

func insertItems[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// checkRef records a violation when the referenced row does not exist.
func checkRef(tx *gorm.DB, model any, field string, id *uint, v validation.Violations) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(model).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		v.Add(field, "not_found")
	}
	return nil
}

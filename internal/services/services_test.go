package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/crm-documents/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testSettings() Settings {
	return Settings{Now: func() time.Time { return testNow }}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func seedContact(t *testing.T, db *gorm.DB) models.Contact {
	t.Helper()
	c := models.Contact{FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@techvision.com"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("contact: %v", err)
	}
	return c
}

func designItems() []ItemInput {
	return []ItemInput{
		{Description: "Design", Quantity: 1, UnitPrice: dec("800")},
		{Description: "SEO", Quantity: 1, UnitPrice: dec("200")},
	}
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

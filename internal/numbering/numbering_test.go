package numbering

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type proposalRow struct {
	ID     uint   `gorm:"primaryKey"`
	Number string `gorm:"uniqueIndex"`
}

func (proposalRow) TableName() string { return "proposals" }

type invoiceRow struct {
	ID     uint   `gorm:"primaryKey"`
	Number string `gorm:"uniqueIndex"`
}

func (invoiceRow) TableName() string { return "invoices" }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&proposalRow{}, &invoiceRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fixedNow() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		year   int
		n      int
		want   string
	}{
		{"PRO", 2026, 1, "PRO-2026-001"},
		{"FAT", 2026, 42, "FAT-2026-042"},
		{"FAT", 2027, 999, "FAT-2027-999"},
		{"PRO", 2026, 1000, "PRO-2026-1000"},
	}
	for _, tt := range tests {
		if got := Format(tt.prefix, tt.year, tt.n); got != tt.want {
			t.Errorf("Format(%q, %d, %d) = %q, want %q", tt.prefix, tt.year, tt.n, got, tt.want)
		}
	}
}

func TestNextIsSequentialAndDistinct(t *testing.T) {
	db := setupDB(t)
	a := NewAllocator(fixedNow)
	pattern := regexp.MustCompile(`^(PRO|FAT)-2026-\d{3}$`)
	seen := map[string]bool{}
	for i := 1; i <= 12; i++ {
		pro, err := a.Next(db, Proposals)
		if err != nil {
			t.Fatalf("next proposal: %v", err)
		}
		if err := db.Create(&proposalRow{Number: pro}).Error; err != nil {
			t.Fatalf("insert %s: %v", pro, err)
		}
		// interleave invoices, they must not disturb the proposal counter
		if i%3 == 0 {
			fat, err := a.Next(db, Invoices)
			if err != nil {
				t.Fatalf("next invoice: %v", err)
			}
			if err := db.Create(&invoiceRow{Number: fat}).Error; err != nil {
				t.Fatalf("insert %s: %v", fat, err)
			}
			if want := Format("FAT", 2026, i/3); fat != want {
				t.Fatalf("invoice number = %q, want %q", fat, want)
			}
		}
		if want := Format("PRO", 2026, i); pro != want {
			t.Fatalf("proposal number = %q, want %q", pro, want)
		}
		if !pattern.MatchString(pro) || seen[pro] {
			t.Fatalf("unexpected or duplicate number %q", pro)
		}
		seen[pro] = true
	}
}

func TestNextIsScopedByYear(t *testing.T) {
	db := setupDB(t)
	for _, n := range []string{"PRO-2025-001", "PRO-2025-002", "PRO-2025-003"} {
		db.Create(&proposalRow{Number: n})
	}
	got, err := NewAllocator(fixedNow).Next(db, Proposals)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "PRO-2026-001" {
		t.Fatalf("expected a fresh counter for 2026, got %q", got)
	}
	got, err = NewAllocator(fixedNow).NextForYear(db, Proposals, 2025)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "PRO-2025-004" {
		t.Fatalf("got %q, want PRO-2025-004", got)
	}
}

func TestNextSkipsPastHighestAfterDeletion(t *testing.T) {
	db := setupDB(t)
	for _, n := range []string{"FAT-2026-001", "FAT-2026-002", "FAT-2026-003"} {
		db.Create(&invoiceRow{Number: n})
	}
	db.Where("number = ?", "FAT-2026-002").Delete(&invoiceRow{})
	got, err := NewAllocator(fixedNow).Next(db, Invoices)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "FAT-2026-004" {
		t.Fatalf("got %q, want FAT-2026-004", got)
	}
}

func TestUniqueIndexRejectsDuplicate(t *testing.T) {
	db := setupDB(t)
	a := NewAllocator(fixedNow)
	first, _ := a.Next(db, Proposals)
	second, _ := a.Next(db, Proposals)
	if first != second {
		t.Fatalf("without an insert in between both calls see the same count: %q vs %q", first, second)
	}
	if err := db.Create(&proposalRow{Number: first}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := db.Create(&proposalRow{Number: second}).Error; err == nil {
		t.Fatalf("expected unique violation for %q", second)
	}
}

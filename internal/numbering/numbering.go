// Package numbering mints human readable, year scoped document numbers such
// as PRO-2026-001. The unique index on the number column is what actually
// guarantees uniqueness; two concurrent allocations can compute the same
// number and the second insert fails.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Sequence identifies the numbered table of one document type.
type Sequence struct {
	Prefix string
	Table  string
}

var (
	Proposals = Sequence{Prefix: "PRO", Table: "proposals"}
	Invoices  = Sequence{Prefix: "FAT", Table: "invoices"}
)

// Format renders prefix, year and counter, padding the counter to 3 digits.
func Format(prefix string, year, n int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, n)
}

// Allocator computes the next number from the rows already stored.
type Allocator struct {
	now func() time.Time
}

// NewAllocator returns an allocator using now for the default year.
// A nil now means time.Now.
func NewAllocator(now func() time.Time) *Allocator {
	if now == nil {
		now = time.Now
	}
	return &Allocator{now: now}
}

// Next allocates in the current calendar year.
func (a *Allocator) Next(db *gorm.DB, seq Sequence) (string, error) {
	return a.NextForYear(db, seq, a.now().Year())
}

// NextForYear counts the numbers of seq that start with <PREFIX>-<year>- and
// returns the count plus one. When rows were deleted the count lags behind
// the highest counter in use, so the highest counter wins.
func (a *Allocator) NextForYear(db *gorm.DB, seq Sequence, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", seq.Prefix, year)
	var numbers []string
	if err := db.Table(seq.Table).Where("number LIKE ?", prefix+"%").Pluck("number", &numbers).Error; err != nil {
		return "", fmt.Errorf("count %s numbers: %w", seq.Prefix, err)
	}
	last := len(numbers)
	for _, n := range numbers {
		if v, err := strconv.Atoi(strings.TrimPrefix(n, prefix)); err == nil && v > last {
			last = v
		}
	}
	return Format(seq.Prefix, year, last+1), nil
}

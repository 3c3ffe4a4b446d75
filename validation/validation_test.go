package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("title", "  ", v)
	MinInt(Item("items", 0, "quantity"), 0, 1, v)
	NonNegative("discount", decimal.NewFromInt(-1), v)
	Range("taxRate", decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(100), v)
	OneOf("status", "archived", []string{"draft", "sent"}, v)

	want := map[string]string{
		"title":             "required",
		"items[0].quantity": "must_be_positive",
		"discount":          "must_not_be_negative",
		"taxRate":           "out_of_range",
		"status":            "invalid_value",
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("v[%q] = %q, want %q", field, v[field], code)
		}
	}
	if v.Empty() {
		t.Fatalf("expected violations")
	}
}

func TestValidatorsAcceptValidValues(t *testing.T) {
	v := Violations{}
	Required("title", "Site", v)
	MinInt("quantity", 1, 1, v)
	NonNegative("unitPrice", decimal.Zero, v)
	Range("taxRate", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), v)
	OneOf("status", "", []string{"draft"}, v)
	OneOf("status", "draft", []string{"draft"}, v)
	if !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestAddKeepsFirstViolation(t *testing.T) {
	v := Violations{}
	v.Add("title", "required")
	v.Add("title", "too_long")
	if v["title"] != "required" {
		t.Fatalf("expected first code kept, got %q", v["title"])
	}
}

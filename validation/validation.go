package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field path to a violation code (required, must_be_positive, ...).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Item returns the path of a field inside a list element, e.g. items[2].quantity.
func Item(list string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, index, field)
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v.Add(field, "must_be_positive")
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

func Range(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v.Add(field, "out_of_range")
	}
}

// OneOf accepts an empty value; pair it with Required when the field is mandatory.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, "invalid_value")
}

package pdf

import (
	"strings"

	"github.com/diewo77/crm-documents/i18n"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatter renders amounts in euros for one language.
type formatter struct {
	lang    string
	printer *message.Printer
}

func newFormatter(lang string) formatter {
	if !i18n.Supported(lang) {
		lang = i18n.Default
	}
	tag := language.EuropeanPortuguese
	if lang == i18n.English {
		tag = language.BritishEnglish
	}
	return formatter{lang: lang, printer: message.NewPrinter(tag)}
}

// money formats d as "1 234,50 €" (pt) or "€1,234.50" (en).
func (f formatter) money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	v, _ := d.Abs().Round(2).Float64()
	amount := f.printer.Sprintf("%.2f", v)
	if f.lang == i18n.English {
		return sign + "€" + amount
	}
	return sign + amount + " €"
}

// percent drops trailing zeros: 23, 6.5 (pt: 6,5).
func (f formatter) percent(d decimal.Decimal) string {
	s := d.String()
	if f.lang != i18n.English {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s + "%"
}

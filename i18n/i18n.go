// Package i18n holds the static pt/en dictionary used for API messages and
// document labels.
package i18n

import (
	"fmt"
	"strings"
	"time"
)

const (
	Portuguese = "pt"
	English    = "en"

	Default = Portuguese
)

var dict = map[string]map[string]string{
	Portuguese: {
		// errors
		"validation_failed":    "Dados inválidos",
		"not_found":            "Não encontrado",
		"number_conflict":      "Número de documento já existe, tente novamente",
		"dependency_failure":   "Erro interno",
		"internal_error":       "Erro interno",
		"invalid_json":         "JSON inválido",
		"invalid_id":           "ID inválido",
		"unauthorized":         "Não autenticado",
		"invalid_credentials":  "Credenciais inválidas",
		"required":             "Obrigatório",
		"must_be_positive":     "Deve ser positivo",
		"must_not_be_negative": "Não pode ser negativo",
		"out_of_range":         "Fora do intervalo",
		"invalid_value":        "Valor inválido",
		"invalid_date":         "Data inválida",

		// documents
		"proposal_heading": "PROPOSTA",
		"invoice_heading":  "FATURA",
		"client":           "CLIENTE:",
		"date":             "Data:",
		"valid_until":      "Válido até:",
		"issue_date":       "Emissão:",
		"due_date":         "Vencimento:",
		"col_description":  "Descrição",
		"col_quantity":     "Qtd",
		"col_unit_price":   "Preço Unit.",
		"col_total":        "Total",
		"subtotal":         "Subtotal:",
		"tax":              "IVA",
		"discount":         "Desconto:",
		"total":            "TOTAL:",
		"notes":            "Notas:",
		"footer":           "Gerado automaticamente pelo",
		"invoice_from":     "Fatura",
		"status_draft":     "RASCUNHO",
		"status_sent":      "ENVIADA",
		"status_paid":      "PAGA",
		"status_overdue":   "VENCIDA",
		"status_cancelled": "CANCELADA",
	},
	English: {
		"validation_failed":    "Invalid data",
		"not_found":            "Not found",
		"number_conflict":      "Document number already taken, please retry",
		"dependency_failure":   "Internal error",
		"internal_error":       "Internal error",
		"invalid_json":         "Invalid JSON",
		"invalid_id":           "Invalid ID",
		"unauthorized":         "Not authenticated",
		"invalid_credentials":  "Invalid credentials",
		"required":             "Required",
		"must_be_positive":     "Must be positive",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"invalid_value":        "Invalid value",
		"invalid_date":         "Invalid date",

		"proposal_heading": "PROPOSAL",
		"invoice_heading":  "INVOICE",
		"client":           "CLIENT:",
		"date":             "Date:",
		"valid_until":      "Valid until:",
		"issue_date":       "Issued:",
		"due_date":         "Due:",
		"col_description":  "Description",
		"col_quantity":     "Qty",
		"col_unit_price":   "Unit Price",
		"col_total":        "Total",
		"subtotal":         "Subtotal:",
		"tax":              "VAT",
		"discount":         "Discount:",
		"total":            "TOTAL:",
		"notes":            "Notes:",
		"footer":           "Automatically generated by",
		"invoice_from":     "Invoice",
		"status_draft":     "DRAFT",
		"status_sent":      "SENT",
		"status_paid":      "PAID",
		"status_overdue":   "OVERDUE",
		"status_cancelled": "CANCELLED",
	},
}

var months = map[string][12]string{
	Portuguese: {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	English:    {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

// Supported reports whether lang has a dictionary.
func Supported(lang string) bool {
	_, ok := dict[lang]
	return ok
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		if Supported(base) {
			return base
		}
	}
	return Default
}

// T translates code, falling back to Portuguese and then to the code itself.
func T(lang, code string) string {
	if m, ok := dict[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := dict[Default][code]; ok {
		return s
	}
	return code
}

// LongDate formats t the way each language writes a full date.
func LongDate(lang string, t time.Time) string {
	names, ok := months[lang]
	if !ok {
		lang, names = Default, months[Default]
	}
	month := names[t.Month()-1]
	if lang == English {
		return fmt.Sprintf("%s %d, %d", month, t.Day(), t.Year())
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), month, t.Year())
}

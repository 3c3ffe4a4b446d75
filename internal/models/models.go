// Package models declares the gorm models persisted by the CRM.
package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, like the rest of the API.
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every model in dependency order, for AutoMigrate and tests.
func All() []any {
	return []any{
		&Company{}, &Contact{}, &Deal{},
		&Proposal{}, &ProposalItem{},
		&Invoice{}, &InvoiceItem{},
		&EmailTemplate{}, &EmailLog{},
	}
}

package dto

import "github.com/shopspring/decimal"

// CreateProposalRequest body para POST /api/proposals (y PUT en borrador).
type CreateProposalRequest struct {
	ClientID string            `json:"client_id,omitempty"`
	Title    string            `json:"title"`
	Currency string            `json:"currency,omitempty"`
	TaxRate  decimal.Decimal   `json:"tax_rate"`
	Notes    string            `json:"notes,omitempty"`
	Items    []LineItemRequest `json:"items"`
}

// UpdateProposalStatusRequest body para POST /api/proposals/:id/status.
type UpdateProposalStatusRequest struct {
	Status string `json:"status"` // sent | approved | rejected
}

// ProposalItemResponse línea de propuesta en respuestas.
type ProposalItemResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProposalResponse propuesta con totales y líneas.
type ProposalResponse struct {
	ID                   string                 `json:"id"`
	AgencyID             string                 `json:"agency_id"`
	ClientID             string                 `json:"client_id,omitempty"`
	Title                string                 `json:"title"`
	Currency             string                 `json:"currency"`
	TaxRate              decimal.Decimal        `json:"tax_rate"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	TaxAmount            decimal.Decimal        `json:"tax_amount"`
	Total                decimal.Decimal        `json:"total"`
	Status               string                 `json:"status"`
	Notes                string                 `json:"notes,omitempty"`
	ConvertedToInvoiceID string                 `json:"converted_to_invoice_id,omitempty"`
	CreatedAt            string                 `json:"created_at"`
	Items                []ProposalItemResponse `json:"items,omitempty"`
}

// ConvertProposalResponse resultado de POST /api/proposals/:id/convert.
type ConvertProposalResponse struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber int64  `json:"invoice_number"`
}

package dto

import "github.com/shopspring/decimal"

// CreatePaymentRequest body para POST /api/invoices/:id/payments
// (y PUT /api/payments/:id).
type CreatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"` // "2006-01-02", obligatorio
	Method      string          `json:"method"`       // cash | bank_transfer | card | other
	Note        string          `json:"note,omitempty"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method"`
	Note        string          `json:"note,omitempty"`
}

// InvoicePaymentsResponse ledger completo de una factura con el saldo derivado.
type InvoicePaymentsResponse struct {
	InvoiceID     string            `json:"invoice_id"`
	Total         decimal.Decimal   `json:"total"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	BalanceDue    decimal.Decimal   `json:"balance_due"`
	PaymentStatus string            `json:"payment_status"`
	Payments      []PaymentResponse `json:"payments"`
}

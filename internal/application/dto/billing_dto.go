package dto

import "github.com/shopspring/decimal"

// LineItemRequest línea de documento (factura o propuesta) en requests.
type LineItemRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// TaxRate acepta fracción (0.19) o porcentaje (19); se normaliza a fracción.
type CreateInvoiceRequest struct {
	ClientID string            `json:"client_id"`
	Title    string            `json:"title"`
	Currency string            `json:"currency,omitempty"` // vacío = moneda por defecto de la agencia
	TaxRate  decimal.Decimal   `json:"tax_rate"`
	Notes    string            `json:"notes,omitempty"`
	DueDate  string            `json:"due_date,omitempty"` // "2006-01-02"
	Items    []LineItemRequest `json:"items"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (solo en borrador).
type UpdateInvoiceRequest = CreateInvoiceRequest

// InvoiceItemResponse línea de factura en respuestas.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse factura con totales, saldo derivado y líneas.
// PaidAmount, BalanceDue, PaymentStatus, DisplayStatus y Overdue se derivan
// del ledger de pagos en cada lectura; nunca vienen de una columna.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	AgencyID      string                `json:"agency_id"`
	ClientID      string                `json:"client_id"`
	ClientName    string                `json:"client_name,omitempty"`
	Number        int64                 `json:"number"`
	Title         string                `json:"title"`
	Currency      string                `json:"currency"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	Total         decimal.Decimal       `json:"total"`
	Status        string                `json:"status"` // workflow: draft | sent | void
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	PaymentStatus string                `json:"payment_status"` // unpaid | partially_paid | paid
	DisplayStatus string                `json:"display_status"`
	Overdue       bool                  `json:"overdue"`
	PDFURL        string                `json:"pdf_url,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	DueDate       string                `json:"due_date,omitempty"`
	SentAt        string                `json:"sent_at,omitempty"`
	CreatedAt     string                `json:"created_at"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
}

// InvoiceListResponse listado paginado de facturas.
type InvoiceListResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Page     PageResponse      `json:"page"`
}

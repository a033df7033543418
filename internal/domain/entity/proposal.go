package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una propuesta.
const (
	ProposalStatusDraft    = "draft"
	ProposalStatusSent     = "sent"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
)

// Proposal representa una propuesta comercial. Una propuesta aprobada puede
// convertirse exactamente una vez en una factura borrador;
// ConvertedToInvoiceID es el puntero one-way que guarda esa conversión.
type Proposal struct {
	ID                   string
	AgencyID             string
	ClientID             string // opcional
	Title                string
	Currency             string
	TaxRate              decimal.Decimal
	Subtotal             decimal.Decimal
	TaxAmount            decimal.Decimal
	Total                decimal.Decimal
	Status               string // draft | sent | approved | rejected
	Notes                string
	ConvertedToInvoiceID string // vacío hasta la conversión; se escribe una sola vez
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de flujo de trabajo de una factura. El estado almacenado solo cubre
// el workflow (borrador / finalizada / anulada). "Pagada", "parcialmente
// pagada" y "vencida" NUNCA se persisten: se derivan del ledger de pagos en
// cada lectura (ver internal/domain/billing).
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusVoid  = "void"
)

// Invoice representa la cabecera de una factura.
// Invariante: Total = round(Subtotal + round(Subtotal*TaxRate, 2), 2).
// SentAt se escribe exactamente una vez, al finalizar.
type Invoice struct {
	ID        string
	AgencyID  string
	ClientID  string
	Number    int64 // consecutivo por agencia, asignado con incremento atómico
	Title     string
	Currency  string
	TaxRate   decimal.Decimal // fracción en [0,1]
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	Status    string // draft | sent | void
	PDFURL    string // requerido para finalizar (draft -> sent)
	Notes     string
	DueDate   *time.Time
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDraft indica si la factura sigue siendo editable.
func (i *Invoice) IsDraft() bool { return i.Status == InvoiceStatusDraft }

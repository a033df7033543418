package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
	PaymentMethodOther        = "other"
)

// ValidPaymentMethod verifica que el método pertenezca al catálogo.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment representa un abono registrado contra una factura.
// Invariante (ledger): la suma de pagos de una factura nunca supera su total;
// se valida al crear y al editar recalculando la suma de los demás pagos.
type Payment struct {
	ID          string
	InvoiceID   string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string // cash | bank_transfer | card | other
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

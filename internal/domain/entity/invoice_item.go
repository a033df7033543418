package entity

import "github.com/shopspring/decimal"

// InvoiceItem representa una línea de una factura.
// Amount = Quantity * UnitPrice (sin impuesto; el impuesto se aplica a nivel
// de factura sobre el subtotal).
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Title       string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Position    int
}

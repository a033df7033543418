package entity

import "github.com/shopspring/decimal"

// ProposalItem representa una línea de una propuesta. Al convertir la
// propuesta, las líneas se copian como snapshot a la factura: ediciones
// posteriores de la propuesta nunca afectan la factura creada.
type ProposalItem struct {
	ID          string
	ProposalID  string
	Title       string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Position    int
}

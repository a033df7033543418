// Package billing contiene el cálculo puro del estado financiero de una
// factura: totales con impuesto, saldo pendiente y estado de pago derivado.
//
// Ninguna función tiene efectos secundarios; todas las superficies (listados,
// detalle, reportes, validación de pagos) derivan estos valores aquí en lugar
// de persistirlos. Un flag "paid" almacenado puede divergir del ledger de
// pagos; una derivación pura no.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
)

// Estados de pago derivados (nunca persistidos).
const (
	PaymentStatusUnpaid        = "unpaid"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusPaid          = "paid"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Line es una línea de documento para el cálculo de totales
// (factura o propuesta).
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Totals resultado de ComputeTotals. Montos redondeados a 2 decimales
// (half-up), que es la forma en que se almacenan y se muestran.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Balance resultado de ComputeBalance.
type Balance struct {
	PaidAmount decimal.Decimal
	BalanceDue decimal.Decimal // max(0, total - pagado); nunca negativo
	Status     string          // unpaid | partially_paid | paid
}

// ComputeTotals calcula subtotal, impuesto y total de un documento.
//
//	subtotal = Σ(cantidad × precio unitario)
//	impuesto = round(subtotal × tasa, 2)
//	total    = round(subtotal + impuesto, 2)
//
// Restricciones: tasa en [0,1]; cantidades y precios no negativos.
func ComputeTotals(lines []Line, taxRate decimal.Decimal) (Totals, error) {
	if taxRate.LessThan(decimal.Zero) || taxRate.GreaterThan(one) {
		return Totals{}, domain.ErrInvalidInput
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity.LessThan(decimal.Zero) || l.UnitPrice.LessThan(decimal.Zero) {
			return Totals{}, domain.ErrInvalidInput
		}
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	subtotal = subtotal.Round(2)
	taxAmount := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(taxAmount).Round(2)
	return Totals{Subtotal: subtotal, TaxAmount: taxAmount, Total: total}, nil
}

// LinesFromInvoiceItems adapta líneas de factura al cálculo de totales.
func LinesFromInvoiceItems(items []*entity.InvoiceItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return lines
}

// LinesFromProposalItems adapta líneas de propuesta al cálculo de totales.
func LinesFromProposalItems(items []*entity.ProposalItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return lines
}

// NormalizeTaxRate acepta la tasa como fracción (0.19) o porcentaje (19) y la
// devuelve siempre como fracción. Valores > 1 se interpretan como porcentaje.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(one) {
		return rate.Div(hundred)
	}
	return rate
}

// ComputeBalance deriva el estado de pago de una factura a partir del ledger
// completo y actual de pagos. No se confía en ningún acumulado cacheado.
//
// "Pagada" usa >=: un sobrepago se reporta con saldo 0, nunca negativo.
func ComputeBalance(invoiceTotal decimal.Decimal, payments []*entity.Payment) Balance {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	due := invoiceTotal.Sub(paid)
	if due.LessThan(decimal.Zero) {
		due = decimal.Zero
	}
	status := PaymentStatusUnpaid
	switch {
	case paid.GreaterThanOrEqual(invoiceTotal):
		status = PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		status = PaymentStatusPartiallyPaid
	}
	return Balance{PaidAmount: paid.Round(2), BalanceDue: due.Round(2), Status: status}
}

// DisplayStatus deriva el estado que se muestra al usuario: el estado de
// workflow cuando la factura es borrador o anulada, y el estado de pago en
// cualquier otro caso. Es función pura de sus entradas: recalcularlo con los
// mismos datos siempre da el mismo resultado.
func DisplayStatus(storedStatus, paymentStatus string) string {
	switch storedStatus {
	case entity.InvoiceStatusDraft:
		return entity.InvoiceStatusDraft
	case entity.InvoiceStatusVoid:
		return entity.InvoiceStatusVoid
	default:
		return paymentStatus
	}
}

// IsOverdue indica si la factura está vencida: no pagada por completo y con
// fecha de vencimiento anterior a now. Sin fecha de vencimiento no hay mora.
func IsOverdue(paymentStatus string, dueDate *time.Time, now time.Time) bool {
	if dueDate == nil || paymentStatus == PaymentStatusPaid {
		return false
	}
	return dueDate.Before(now)
}

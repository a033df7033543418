package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyRevenueResult resultado crudo de la consulta de ingresos por mes.
// Lo produce la DB; el use case lo convierte en DTO.
type MonthlyRevenueResult struct {
	Period       string // "2006-01"
	PaymentCount int
	Revenue      decimal.Decimal // suma de pagos recibidos en el mes
}

// OutstandingResult totales pendientes de cobro de la agencia.
// BalanceDue se calcula en la consulta como total facturado menos pagos,
// floored en cero por factura (el saldo nunca se reporta negativo).
type OutstandingResult struct {
	InvoiceCount int
	Invoiced     decimal.Decimal
	Collected    decimal.Decimal
	BalanceDue   decimal.Decimal
}

// StatusCountResult conteo de facturas por estado derivado.
type StatusCountResult struct {
	Status string // draft | void | unpaid | partially_paid | paid
	Count  int
}

// ReportRepository define las consultas de lectura para reportes.
// Las implementaciones son read-only y derivan el estado de pago del ledger
// en la propia consulta: nunca leen un flag "paid" almacenado.
type ReportRepository interface {
	// GetMonthlyRevenue devuelve ingresos cobrados por mes calendario en el
	// rango dado, meses sin pagos excluidos.
	GetMonthlyRevenue(
		ctx context.Context,
		agencyID string,
		startDate, endDate time.Time,
	) ([]MonthlyRevenueResult, error)

	// GetOutstanding devuelve el agregado de facturas finalizadas (sent) con
	// su total facturado, cobrado y saldo pendiente.
	GetOutstanding(ctx context.Context, agencyID string) (OutstandingResult, error)

	// GetStatusCounts agrupa las facturas por estado visible (workflow para
	// draft/void, estado de pago derivado para el resto).
	GetStatusCounts(ctx context.Context, agencyID string, now time.Time) ([]StatusCountResult, error)
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturio/billing-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes de cartera e ingresos.
// El estado de pago se deriva del ledger en la propia consulta: no existe
// ningún flag "paid" almacenado que leer.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// GetMonthlyRevenue agrupa los pagos recibidos por mes calendario. Meses sin
// pagos no aparecen en el resultado.
func (r *ReportRepo) GetMonthlyRevenue(
	ctx context.Context,
	agencyID string,
	startDate, endDate time.Time,
) ([]repository.MonthlyRevenueResult, error) {
	const query = `
	SELECT
	    to_char(date_trunc('month', p.payment_date), 'YYYY-MM') AS period,
	    COUNT(*)                                                AS payment_count,
	    SUM(p.amount)                                           AS revenue
	FROM payments p
	JOIN invoices i ON i.id = p.invoice_id
	WHERE i.agency_id = $1
	  AND p.payment_date BETWEEN $2 AND $3
	GROUP BY 1
	ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, agencyID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("reports.GetMonthlyRevenue: %w", err)
	}
	defer rows.Close()

	var results []repository.MonthlyRevenueResult
	for rows.Next() {
		var row repository.MonthlyRevenueResult
		if err := rows.Scan(&row.Period, &row.PaymentCount, &row.Revenue); err != nil {
			return nil, fmt.Errorf("reports.GetMonthlyRevenue scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetOutstanding agrega las facturas finalizadas: total facturado, cobrado y
// saldo pendiente. El saldo se floorea en cero por factura, igual que el
// cálculo de dominio: un sobrepago histórico no descuenta deuda ajena.
func (r *ReportRepo) GetOutstanding(ctx context.Context, agencyID string) (repository.OutstandingResult, error) {
	const query = `
	SELECT
	    COUNT(*)                                        AS invoice_count,
	    COALESCE(SUM(i.total), 0)                       AS invoiced,
	    COALESCE(SUM(pp.paid), 0)                       AS collected,
	    COALESCE(SUM(GREATEST(i.total - pp.paid, 0)), 0) AS balance_due
	FROM invoices i
	LEFT JOIN LATERAL (
	    SELECT COALESCE(SUM(p.amount), 0) AS paid
	    FROM payments p WHERE p.invoice_id = i.id
	) pp ON true
	WHERE i.agency_id = $1
	  AND i.status = 'sent'`

	var res repository.OutstandingResult
	err := r.pool.QueryRow(ctx, query, agencyID).Scan(
		&res.InvoiceCount, &res.Invoiced, &res.Collected, &res.BalanceDue,
	)
	if err != nil {
		return repository.OutstandingResult{}, fmt.Errorf("reports.GetOutstanding: %w", err)
	}
	return res, nil
}

// GetStatusCounts agrupa las facturas por estado visible: workflow para
// draft/void y estado de pago derivado del ledger para las finalizadas.
func (r *ReportRepo) GetStatusCounts(ctx context.Context, agencyID string, now time.Time) ([]repository.StatusCountResult, error) {
	const query = `
	SELECT
	    CASE
	        WHEN i.status IN ('draft', 'void') THEN i.status
	        WHEN pp.paid >= i.total            THEN 'paid'
	        WHEN pp.paid > 0                   THEN 'partially_paid'
	        ELSE 'unpaid'
	    END      AS status,
	    COUNT(*) AS count
	FROM invoices i
	LEFT JOIN LATERAL (
	    SELECT COALESCE(SUM(p.amount), 0) AS paid
	    FROM payments p WHERE p.invoice_id = i.id
	) pp ON true
	WHERE i.agency_id = $1
	GROUP BY 1
	ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, agencyID)
	if err != nil {
		return nil, fmt.Errorf("reports.GetStatusCounts: %w", err)
	}
	defer rows.Close()

	var results []repository.StatusCountResult
	for rows.Next() {
		var row repository.StatusCountResult
		if err := rows.Scan(&row.Status, &row.Count); err != nil {
			return nil, fmt.Errorf("reports.GetStatusCounts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

package usecase

import (
	"context"
	"time"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// ReportUseCase reportes de cartera e ingresos. Solo lecturas; todo estado de
// pago se deriva del ledger dentro de las consultas.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reportRepo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo}
}

// Revenue ingresos cobrados por mes calendario en los últimos `months` meses
// (12 por defecto, tope 36).
func (uc *ReportUseCase) Revenue(ctx context.Context, agencyID string, months int) (*dto.RevenueReportDTO, error) {
	if months <= 0 {
		months = 12
	}
	if months > 36 {
		months = 36
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	results, err := uc.reportRepo.GetMonthlyRevenue(ctx, agencyID, start, now)
	if err != nil {
		return nil, err
	}
	out := &dto.RevenueReportDTO{Months: make([]dto.MonthlyRevenueDTO, 0, len(results))}
	for _, r := range results {
		out.Months = append(out.Months, dto.MonthlyRevenueDTO{
			Period:       r.Period,
			PaymentCount: r.PaymentCount,
			Revenue:      r.Revenue,
		})
	}
	return out, nil
}

// Summary agregado de cartera: facturado, cobrado, saldo pendiente y conteo de
// facturas por estado visible.
func (uc *ReportUseCase) Summary(ctx context.Context, agencyID string) (*dto.ReportSummaryDTO, error) {
	outstanding, err := uc.reportRepo.GetOutstanding(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	counts, err := uc.reportRepo.GetStatusCounts(ctx, agencyID, time.Now())
	if err != nil {
		return nil, err
	}
	out := &dto.ReportSummaryDTO{
		InvoiceCount: outstanding.InvoiceCount,
		Invoiced:     outstanding.Invoiced,
		Collected:    outstanding.Collected,
		BalanceDue:   outstanding.BalanceDue,
		StatusCounts: make(map[string]int, len(counts)),
	}
	for _, c := range counts {
		out.StatusCounts[c.Status] = c.Count
	}
	return out, nil
}

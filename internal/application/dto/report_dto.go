package dto

import "github.com/shopspring/decimal"

// MonthlyRevenueDTO ingresos cobrados en un mes calendario.
type MonthlyRevenueDTO struct {
	Period       string          `json:"period"` // "2006-01"
	PaymentCount int             `json:"payment_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ReportSummaryDTO resumen de cartera para GET /api/reports/summary.
type ReportSummaryDTO struct {
	InvoiceCount int             `json:"invoice_count"`
	Invoiced     decimal.Decimal `json:"invoiced"`
	Collected    decimal.Decimal `json:"collected"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
	StatusCounts map[string]int  `json:"status_counts"`
}

// RevenueReportDTO respuesta de GET /api/reports/revenue.
type RevenueReportDTO struct {
	Months []MonthlyRevenueDTO `json:"months"`
}

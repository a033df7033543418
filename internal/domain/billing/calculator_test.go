package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pagos(amounts ...string) []*entity.Payment {
	out := make([]*entity.Payment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, &entity.Payment{Amount: dec(a)})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeTotals
// ──────────────────────────────────────────────────────────────────────────────

// Caso de referencia: subtotal 833.33 con 20% de impuesto debe cerrar
// exactamente en 1000.00 (166.67 de impuesto, redondeo half-up).
func TestComputeTotals_RedondeoCierraEnMil(t *testing.T) {
	totals, err := billing.ComputeTotals([]billing.Line{
		{Quantity: dec("1"), UnitPrice: dec("833.33")},
	}, dec("0.20"))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("833.33")), "subtotal: %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec("166.67")), "impuesto: %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("1000.00")), "total: %s", totals.Total)
}

func TestComputeTotals_VariasLineas(t *testing.T) {
	totals, err := billing.ComputeTotals([]billing.Line{
		{Quantity: dec("3"), UnitPrice: dec("100.00")},
		{Quantity: dec("1.5"), UnitPrice: dec("200.00")},
		{Quantity: dec("10"), UnitPrice: dec("0.10")},
	}, dec("0.19"))
	require.NoError(t, err)

	// 300 + 300 + 1 = 601; 601 * 0.19 = 114.19
	assert.True(t, totals.Subtotal.Equal(dec("601.00")))
	assert.True(t, totals.TaxAmount.Equal(dec("114.19")))
	assert.True(t, totals.Total.Equal(dec("715.19")))
}

func TestComputeTotals_SinImpuesto(t *testing.T) {
	totals, err := billing.ComputeTotals([]billing.Line{
		{Quantity: dec("2"), UnitPrice: dec("49.995")},
	}, decimal.Zero)
	require.NoError(t, err)

	// 99.99 exacto; el redondeo no inventa centavos.
	assert.True(t, totals.Subtotal.Equal(dec("99.99")))
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.Total.Equal(dec("99.99")))
}

func TestComputeTotals_SinLineas(t *testing.T) {
	totals, err := billing.ComputeTotals(nil, dec("0.19"))
	require.NoError(t, err)
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotals_TasaFueraDeRango(t *testing.T) {
	_, err := billing.ComputeTotals(nil, dec("1.5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tasa > 1 debe rechazarse")

	_, err = billing.ComputeTotals(nil, dec("-0.1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tasa negativa debe rechazarse")
}

func TestComputeTotals_CantidadNegativa(t *testing.T) {
	_, err := billing.ComputeTotals([]billing.Line{
		{Quantity: dec("-1"), UnitPrice: dec("10")},
	}, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalizeTaxRate(t *testing.T) {
	assert.True(t, billing.NormalizeTaxRate(dec("0.19")).Equal(dec("0.19")), "fracción queda igual")
	assert.True(t, billing.NormalizeTaxRate(dec("19")).Equal(dec("0.19")), "porcentaje se divide entre 100")
	assert.True(t, billing.NormalizeTaxRate(dec("1")).Equal(dec("1")), "1 se interpreta como 100% en fracción")
	assert.True(t, billing.NormalizeTaxRate(decimal.Zero).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeBalance
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeBalance_SinPagos(t *testing.T) {
	bal := billing.ComputeBalance(dec("1000.00"), nil)
	assert.True(t, bal.PaidAmount.IsZero())
	assert.True(t, bal.BalanceDue.Equal(dec("1000.00")))
	assert.Equal(t, billing.PaymentStatusUnpaid, bal.Status)
}

func TestComputeBalance_PagoParcial(t *testing.T) {
	bal := billing.ComputeBalance(dec("1000.00"), pagos("400.00"))
	assert.True(t, bal.PaidAmount.Equal(dec("400.00")))
	assert.True(t, bal.BalanceDue.Equal(dec("600.00")))
	assert.Equal(t, billing.PaymentStatusPartiallyPaid, bal.Status)
}

// Escenario del ledger: 400 + 600 = total exacto -> pagada con saldo cero.
func TestComputeBalance_PagosSumanExacto(t *testing.T) {
	bal := billing.ComputeBalance(dec("1000.00"), pagos("400.00", "600.00"))
	assert.True(t, bal.PaidAmount.Equal(dec("1000.00")))
	assert.True(t, bal.BalanceDue.IsZero())
	assert.Equal(t, billing.PaymentStatusPaid, bal.Status)
}

// El saldo jamás se reporta negativo aunque el ledger histórico exceda el total.
func TestComputeBalance_SobrepagoSaldoCero(t *testing.T) {
	bal := billing.ComputeBalance(dec("1000.00"), pagos("700.00", "700.00"))
	assert.True(t, bal.PaidAmount.Equal(dec("1400.00")))
	assert.True(t, bal.BalanceDue.IsZero(), "el saldo se floorea en cero")
	assert.Equal(t, billing.PaymentStatusPaid, bal.Status)
}

// Una factura de total cero sin pagos está, por definición, pagada (>= total).
func TestComputeBalance_TotalCeroEsPagada(t *testing.T) {
	bal := billing.ComputeBalance(decimal.Zero, nil)
	assert.Equal(t, billing.PaymentStatusPaid, bal.Status)
	assert.True(t, bal.BalanceDue.IsZero())
}

func TestComputeBalance_CentavosDecimales(t *testing.T) {
	// 333.33 + 333.33 + 333.34 = 1000.00 sin errores de flotante.
	bal := billing.ComputeBalance(dec("1000.00"), pagos("333.33", "333.33", "333.34"))
	assert.Equal(t, billing.PaymentStatusPaid, bal.Status)
	assert.True(t, bal.BalanceDue.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// DisplayStatus / IsOverdue
// ──────────────────────────────────────────────────────────────────────────────

func TestDisplayStatus(t *testing.T) {
	cases := []struct {
		stored, payment, want string
	}{
		{entity.InvoiceStatusDraft, billing.PaymentStatusPaid, entity.InvoiceStatusDraft},
		{entity.InvoiceStatusVoid, billing.PaymentStatusPartiallyPaid, entity.InvoiceStatusVoid},
		{entity.InvoiceStatusSent, billing.PaymentStatusUnpaid, billing.PaymentStatusUnpaid},
		{entity.InvoiceStatusSent, billing.PaymentStatusPartiallyPaid, billing.PaymentStatusPartiallyPaid},
		{entity.InvoiceStatusSent, billing.PaymentStatusPaid, billing.PaymentStatusPaid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, billing.DisplayStatus(tc.stored, tc.payment),
			"stored=%s payment=%s", tc.stored, tc.payment)
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ayer := now.AddDate(0, 0, -1)
	manana := now.AddDate(0, 0, 1)

	assert.False(t, billing.IsOverdue(billing.PaymentStatusUnpaid, nil, now), "sin vencimiento no hay mora")
	assert.False(t, billing.IsOverdue(billing.PaymentStatusPaid, &ayer, now), "pagada nunca está vencida")
	assert.True(t, billing.IsOverdue(billing.PaymentStatusUnpaid, &ayer, now))
	assert.True(t, billing.IsOverdue(billing.PaymentStatusPartiallyPaid, &ayer, now))
	assert.False(t, billing.IsOverdue(billing.PaymentStatusUnpaid, &manana, now))
}

// Recalcular con las mismas entradas siempre da el mismo resultado: no hay
// estado oculto en el cálculo.
func TestComputeBalance_EsDeterminista(t *testing.T) {
	ledger := pagos("125.50", "74.50")
	a := billing.ComputeBalance(dec("500.00"), ledger)
	b := billing.ComputeBalance(dec("500.00"), ledger)
	assert.Equal(t, a.Status, b.Status)
	assert.True(t, a.PaidAmount.Equal(b.PaidAmount))
	assert.True(t, a.BalanceDue.Equal(b.BalanceDue))
}

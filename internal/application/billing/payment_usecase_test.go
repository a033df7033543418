package billing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	domainbilling "github.com/facturio/billing-api/internal/domain/billing"
)

// sentInvoice crea y finaliza una factura de total 1000.00 lista para pagos.
func sentInvoice(t *testing.T, env *billingEnv) *dto.InvoiceResponse {
	t.Helper()
	inv := createDraft(t, env, "833.33") // 833.33 + 20% = 1000.00
	return finalizeInvoice(t, env, inv.ID)
}

func pago(amount string) dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{
		Amount:      decT(amount),
		PaymentDate: "2026-08-15",
		Method:      "bank_transfer",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AddPayment — invariante del ledger
// ──────────────────────────────────────────────────────────────────────────────

// Escenario de referencia: con 400 abonados a una factura de 1000, un pago de
// 700 se RECHAZA (no se recorta); uno de 600 la deja pagada con saldo cero.
func TestAddPayment_RechazaExcesoYAceptaExacto(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	inv := sentInvoice(t, env)

	_, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("400.00"))
	require.NoError(t, err)

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("700.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "700 excede el saldo de 600")

	ledger, err := env.paymentUC.ListPayments(ctx, env.agencyID, inv.ID)
	require.NoError(t, err)
	assert.True(t, ledger.PaidAmount.Equal(decT("400.00")), "el intento rechazado no dejó rastro")

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("600.00"))
	require.NoError(t, err)

	ledger, err = env.paymentUC.ListPayments(ctx, env.agencyID, inv.ID)
	require.NoError(t, err)
	assert.True(t, ledger.BalanceDue.IsZero())
	assert.Equal(t, domainbilling.PaymentStatusPaid, ledger.PaymentStatus)
}

func TestAddPayment_SoloFacturasFinalizadas(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()

	borrador := createDraft(t, env, "100.00")
	_, err := env.paymentUC.AddPayment(ctx, env.agencyID, borrador.ID, pago("50.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidState, "un borrador no recibe pagos")

	anulada := createDraft(t, env, "100.00")
	require.NoError(t, env.invoiceUC.Void(ctx, env.agencyID, anulada.ID))
	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, anulada.ID, pago("50.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una factura anulada no recibe pagos")
}

func TestAddPayment_ValidacionesDeEntrada(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	inv := sentInvoice(t, env)

	_, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, dto.CreatePaymentRequest{
		Amount: decT("0"), PaymentDate: "2026-08-15",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "monto cero se rechaza")

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, dto.CreatePaymentRequest{
		Amount: decT("-10"), PaymentDate: "2026-08-15",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "monto negativo se rechaza")

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, dto.CreatePaymentRequest{
		Amount: decT("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la fecha es obligatoria")

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, dto.CreatePaymentRequest{
		Amount: decT("10"), PaymentDate: "15/08/2026",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la fecha debe ser YYYY-MM-DD")

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, dto.CreatePaymentRequest{
		Amount: decT("10"), PaymentDate: "2026-08-15", Method: "bitcoin",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "método fuera del catálogo")
}

func TestAddPayment_MetodoPorDefecto(t *testing.T) {
	env := newBillingEnv(t)
	inv := sentInvoice(t, env)

	resp, err := env.paymentUC.AddPayment(context.Background(), env.agencyID, inv.ID, dto.CreatePaymentRequest{
		Amount: decT("10"), PaymentDate: "2026-08-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "other", resp.Method, "sin método se registra como other")
}

// ──────────────────────────────────────────────────────────────────────────────
// EditPayment / DeletePayment
// ──────────────────────────────────────────────────────────────────────────────

// El techo al editar excluye el pago editado: total menos la suma de los DEMÁS.
func TestEditPayment_TechoExcluyeElPagoEditado(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	inv := sentInvoice(t, env)

	_, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("400.00"))
	require.NoError(t, err)
	p2, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("300.00"))
	require.NoError(t, err)

	// techo del segundo pago = 1000 - 400 = 600
	_, err = env.paymentUC.EditPayment(ctx, env.agencyID, p2.ID, pago("700.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	edited, err := env.paymentUC.EditPayment(ctx, env.agencyID, p2.ID, pago("600.00"))
	require.NoError(t, err)
	assert.True(t, edited.Amount.Equal(decT("600.00")))

	ledger, err := env.paymentUC.ListPayments(ctx, env.agencyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domainbilling.PaymentStatusPaid, ledger.PaymentStatus)
}

func TestDeletePayment_LiberaSaldo(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	inv := sentInvoice(t, env)

	p, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("1000.00"))
	require.NoError(t, err)

	ledger, _ := env.paymentUC.ListPayments(ctx, env.agencyID, inv.ID)
	assert.Equal(t, domainbilling.PaymentStatusPaid, ledger.PaymentStatus)

	require.NoError(t, env.paymentUC.DeletePayment(ctx, env.agencyID, p.ID))

	ledger, _ = env.paymentUC.ListPayments(ctx, env.agencyID, inv.ID)
	assert.Equal(t, domainbilling.PaymentStatusUnpaid, ledger.PaymentStatus,
		"el estado derivado vuelve a unpaid al vaciar el ledger")
	assert.True(t, ledger.BalanceDue.Equal(decT("1000.00")))

	_, err = env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("1000.00"))
	assert.NoError(t, err, "el saldo liberado vuelve a estar disponible")
}

// El ledger de una factura anulada es inmutable para ediciones; eliminar sí se
// permite porque solo libera saldo.
func TestEditPayment_FacturaAnuladaEsInmutable(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	inv := sentInvoice(t, env)
	p, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("100.00"))
	require.NoError(t, err)
	require.NoError(t, env.invoiceUC.Void(ctx, env.agencyID, inv.ID))

	_, err = env.paymentUC.EditPayment(ctx, env.agencyID, p.ID, pago("200.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidState, "un abono de factura anulada no se edita")

	assert.NoError(t, env.paymentUC.DeletePayment(ctx, env.agencyID, p.ID),
		"depurar un abono registrado por error sigue permitido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tenencia
// ──────────────────────────────────────────────────────────────────────────────

func TestPayments_TenenciaCruzada_NotFound(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	inv := sentInvoice(t, env)
	p, err := env.paymentUC.AddPayment(ctx, env.agencyID, inv.ID, pago("100.00"))
	require.NoError(t, err)

	otra := uuid.New().String()

	_, err = env.paymentUC.AddPayment(ctx, otra, inv.ID, pago("10.00"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.paymentUC.EditPayment(ctx, otra, p.ID, pago("10.00"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, env.paymentUC.DeletePayment(ctx, otra, p.ID), domain.ErrNotFound)

	_, err = env.paymentUC.ListPayments(ctx, otra, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

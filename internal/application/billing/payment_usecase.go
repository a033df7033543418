package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	domainbilling "github.com/facturio/billing-api/internal/domain/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// PaymentUseCase operaciones guardadas sobre el ledger de pagos.
//
// Invariante del ledger: Σ(pagos) de una factura nunca supera su total. Se
// valida en cada escritura re-sumando el listado actual completo; un intento
// de exceder el saldo se RECHAZA, nunca se recorta.
type PaymentUseCase struct {
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository) *PaymentUseCase {
	return &PaymentUseCase{paymentRepo: paymentRepo, invoiceRepo: invoiceRepo}
}

// AddPayment registra un abono contra una factura finalizada. Valida monto
// positivo, fecha obligatoria, método del catálogo y que el monto no exceda el
// saldo pendiente calculado al momento de la llamada. Inserta una sola fila;
// jamás muta la fila de la factura.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, agencyID, invoiceID string, in dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InvoiceStatusSent {
		return nil, domain.ErrInvalidState // borradores y anuladas no reciben pagos
	}
	amount, paymentDate, method, err := validatePaymentInput(in)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByInvoiceID(inv.ID)
	if err != nil {
		return nil, err
	}
	bal := domainbilling.ComputeBalance(inv.Total, payments)
	if amount.GreaterThan(bal.BalanceDue) {
		return nil, fmt.Errorf("%w: el monto %s excede el saldo pendiente %s",
			domain.ErrInvalidInput, amount.StringFixed(2), bal.BalanceDue.StringFixed(2))
	}

	now := time.Now()
	payment := &entity.Payment{
		ID:          uuid.New().String(),
		InvoiceID:   inv.ID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Method:      method,
		Note:        in.Note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// EditPayment modifica un abono existente. Igual que al crear, la factura
// debe seguir en sent: el ledger de una anulada es inmutable. El techo del
// nuevo monto se recalcula con la suma de TODOS LOS DEMÁS pagos de la misma
// factura.
func (uc *PaymentUseCase) EditPayment(ctx context.Context, agencyID, paymentID string, in dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	payment, inv, err := uc.ownedPayment(agencyID, paymentID)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InvoiceStatusSent {
		return nil, domain.ErrInvalidState
	}
	amount, paymentDate, method, err := validatePaymentInput(in)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByInvoiceID(inv.ID)
	if err != nil {
		return nil, err
	}
	others := decimal.Zero
	for _, p := range payments {
		if p.ID != payment.ID {
			others = others.Add(p.Amount)
		}
	}
	ceiling := inv.Total.Sub(others)
	if amount.GreaterThan(ceiling) {
		return nil, fmt.Errorf("%w: el monto %s excede el saldo disponible %s",
			domain.ErrInvalidInput, amount.StringFixed(2), ceiling.StringFixed(2))
	}

	payment.Amount = amount
	payment.PaymentDate = paymentDate
	payment.Method = method
	payment.Note = in.Note
	payment.UpdatedAt = time.Now()
	if err := uc.paymentRepo.Update(payment); err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// DeletePayment elimina un abono tras el chequeo de tenencia. No exige que la
// factura siga en sent: eliminar solo libera saldo y se permite también sobre
// anuladas para depurar abonos registrados por error.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, agencyID, paymentID string) error {
	payment, _, err := uc.ownedPayment(agencyID, paymentID)
	if err != nil {
		return err
	}
	return uc.paymentRepo.Delete(payment.ID)
}

// ListPayments devuelve el ledger completo de la factura con el saldo derivado.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, agencyID, invoiceID string) (*dto.InvoicePaymentsResponse, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByInvoiceID(inv.ID)
	if err != nil {
		return nil, err
	}
	bal := domainbilling.ComputeBalance(inv.Total, payments)
	out := &dto.InvoicePaymentsResponse{
		InvoiceID:     inv.ID,
		Total:         inv.Total,
		PaidAmount:    bal.PaidAmount,
		BalanceDue:    bal.BalanceDue,
		PaymentStatus: bal.Status,
		Payments:      make([]dto.PaymentResponse, 0, len(payments)),
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, *toPaymentResponse(p))
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// ownedInvoice resuelve la factura y verifica tenencia (mismatch => not-found).
func (uc *PaymentUseCase) ownedInvoice(agencyID, invoiceID string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.AgencyID != agencyID {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// ownedPayment resuelve el pago y su factura dueña, verificando que la factura
// pertenece a la agencia del caller. Cualquier mismatch se reporta como
// not-found, nunca como forbidden.
func (uc *PaymentUseCase) ownedPayment(agencyID, paymentID string) (*entity.Payment, *entity.Invoice, error) {
	payment, err := uc.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, domain.ErrNotFound
	}
	inv, err := uc.ownedInvoice(agencyID, payment.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	return payment, inv, nil
}

func validatePaymentInput(in dto.CreatePaymentRequest) (decimal.Decimal, time.Time, string, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return decimal.Zero, time.Time{}, "", fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if in.PaymentDate == "" {
		return decimal.Zero, time.Time{}, "", fmt.Errorf("%w: la fecha de pago es obligatoria", domain.ErrInvalidInput)
	}
	paymentDate, err := time.Parse("2006-01-02", in.PaymentDate)
	if err != nil {
		return decimal.Zero, time.Time{}, "", fmt.Errorf("%w: fecha de pago inválida", domain.ErrInvalidInput)
	}
	method := in.Method
	if method == "" {
		method = entity.PaymentMethodOther
	}
	if !entity.ValidPaymentMethod(method) {
		return decimal.Zero, time.Time{}, "", fmt.Errorf("%w: método de pago desconocido", domain.ErrInvalidInput)
	}
	return in.Amount.Round(2), paymentDate, method, nil
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Method:      p.Method,
		Note:        p.Note,
	}
}

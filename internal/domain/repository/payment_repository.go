package repository

import "github.com/facturio/billing-api/internal/domain/entity"

// PaymentRepository define el puerto de persistencia para Payment.
// Los pagos nunca mutan la fila de la factura: el saldo siempre se deriva
// re-sumando el listado completo.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	Update(payment *entity.Payment) error
	Delete(id string) error
	GetByID(id string) (*entity.Payment, error)
	ListByInvoiceID(invoiceID string) ([]*entity.Payment, error)
}

package repository

import (
	"time"

	"github.com/facturio/billing-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// El estado almacenado solo cubre el workflow (draft|sent|void); los estados de
// pago se derivan del ledger en lectura y jamás se escriben aquí.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	// UpdateDraft reescribe los campos editables de una factura en borrador
	// (título, cliente, moneda, tasa, totales, notas, vencimiento).
	UpdateDraft(invoice *entity.Invoice) error
	// DeleteItemsByInvoiceID elimina todas las líneas (para reescritura del borrador).
	DeleteItemsByInvoiceID(invoiceID string) error
	// SetPDFURL guarda la referencia del artefacto PDF generado.
	SetPDFURL(invoiceID, pdfURL string, updatedAt time.Time) error
	// MarkSent ejecuta la transición draft -> sent escribiendo sent_at una sola
	// vez. Es el único punto del sistema que cambia el estado a sent.
	MarkSent(invoiceID string, sentAt time.Time) error
	// SetStatus cambia el estado de workflow (usado para anular: -> void).
	SetStatus(invoiceID, status string, updatedAt time.Time) error
	GetByID(id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error)
	ListByAgency(agencyID string, limit, offset int) ([]*entity.Invoice, error)
	// DeleteDraft elimina una factura en borrador y sus líneas. No devuelve
	// cupo mensual (ver AgencyRepository.IncrementMonthlyUsage).
	DeleteDraft(id string) error
}

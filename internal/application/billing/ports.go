package billing

import (
	"context"

	domainbilling "github.com/facturio/billing-api/internal/domain/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los
// repositorios atados a la tx. La creación de facturas y la conversión de
// propuestas son multi-fila (cabecera + líneas + contadores) y deben ser
// atómicas: o se persiste todo o nada.
type BillingTxRunner interface {
	// RunInvoice transacción para crear/reescribir una factura con sus líneas.
	RunInvoice(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		agencyRepo repository.AgencyRepository,
	) error) error

	// RunConversion transacción para convertir una propuesta aprobada en
	// factura borrador (numeración, cupo, cabecera, líneas y puntero one-way).
	RunConversion(ctx context.Context, fn func(
		proposalRepo repository.ProposalRepository,
		invoiceRepo repository.InvoiceRepository,
		agencyRepo repository.AgencyRepository,
	) error) error
}

// InvoicePDFGenerator genera el artefacto PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.Invoice,
		agency *entity.Agency,
		client *entity.Client,
		items []*entity.InvoiceItem,
		balance domainbilling.Balance,
	) ([]byte, error)
}

// PDFStore persiste los PDFs generados y devuelve la URL pública que se
// guarda en invoices.pdf_url (precondición para finalizar).
type PDFStore interface {
	Save(ctx context.Context, invoiceID string, pdf []byte) (url string, err error)
	Load(ctx context.Context, invoiceID string) ([]byte, error)
}

// InvoiceEmailSender despacha la factura por correo al cliente. Es un efecto
// colateral opaco: un fallo se reporta al caller y nunca revierte el cambio de
// estado ya confirmado.
type InvoiceEmailSender interface {
	SendInvoice(ctx context.Context, toEmail, toName string, invoice *entity.Invoice, pdf []byte) error
}

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	domainbilling "github.com/facturio/billing-api/internal/domain/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
)

// GeneratePDF genera el artefacto PDF de la factura, lo guarda en el store y
// persiste la URL en pdf_url. El PDF es la precondición para finalizar.
func (uc *InvoiceUseCase) GeneratePDF(ctx context.Context, agencyID, invoiceID string) (string, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return "", err
	}
	if inv.Status == entity.InvoiceStatusVoid {
		return "", domain.ErrInvalidState
	}
	pdfBytes, err := uc.renderPDF(ctx, inv)
	if err != nil {
		return "", err
	}
	url, err := uc.pdfStore.Save(ctx, inv.ID, pdfBytes)
	if err != nil {
		return "", fmt.Errorf("%w: guardar PDF: %v", domain.ErrExternalService, err)
	}
	if err := uc.invoiceRepo.SetPDFURL(inv.ID, url, time.Now()); err != nil {
		return "", err
	}
	return url, nil
}

// DownloadPDF devuelve los bytes del PDF ya generado y el nombre de archivo.
func (uc *InvoiceUseCase) DownloadPDF(ctx context.Context, agencyID, invoiceID string) ([]byte, string, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv.PDFURL == "" {
		return nil, "", domain.ErrPDFRequired
	}
	pdfBytes, err := uc.pdfStore.Load(ctx, inv.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: leer PDF: %v", domain.ErrExternalService, err)
	}
	return pdfBytes, fmt.Sprintf("factura_%06d.pdf", inv.Number), nil
}

// Finalize ejecuta la transición one-way draft -> sent. Es el ÚNICO punto del
// sistema que mueve el estado a sent: SendToCustomer delega aquí cuando la
// factura sigue en borrador, así sent_at se escribe exactamente una vez.
//
// Precondiciones: estado draft y pdf_url presente.
func (uc *InvoiceUseCase) Finalize(ctx context.Context, agencyID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := uc.finalizeLocked(inv); err != nil {
		return nil, err
	}
	return uc.Get(ctx, agencyID, invoiceID)
}

// finalizeLocked aplica la transición sobre una factura ya cargada y con
// tenencia verificada. Muta inv con el nuevo estado.
func (uc *InvoiceUseCase) finalizeLocked(inv *entity.Invoice) error {
	if inv.Status != entity.InvoiceStatusDraft {
		return domain.ErrInvalidState // ya finalizada o anulada
	}
	if inv.PDFURL == "" {
		return domain.ErrPDFRequired
	}
	now := time.Now()
	if err := uc.invoiceRepo.MarkSent(inv.ID, now); err != nil {
		return err
	}
	inv.Status = entity.InvoiceStatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now
	uc.log.Info().Str("invoice_id", inv.ID).Int64("number", inv.Number).Msg("factura finalizada")
	return nil
}

// SendToCustomer envía la factura por correo al cliente. Si la factura sigue
// en borrador primero la finaliza (misma transición autoritativa); si ya fue
// enviada, reenvía sin tocar el estado. Un fallo del correo DESPUÉS de la
// transición confirmada se reporta como error externo pero no se revierte.
func (uc *InvoiceUseCase) SendToCustomer(ctx context.Context, agencyID, invoiceID string) error {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == entity.InvoiceStatusVoid {
		return domain.ErrInvalidState
	}
	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil || client == nil {
		return domain.ErrNotFound
	}
	if client.Email == "" {
		return fmt.Errorf("%w: el cliente no tiene email", domain.ErrInvalidInput)
	}

	if inv.IsDraft() {
		if err := uc.finalizeLocked(inv); err != nil {
			return err
		}
	}

	pdfBytes, err := uc.pdfStore.Load(ctx, inv.ID)
	if err != nil {
		// Estado ya confirmado: el fallo se reporta, no se revierte.
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("PDF no disponible para el envío")
		return fmt.Errorf("%w: leer PDF: %v", domain.ErrExternalService, err)
	}
	if err := uc.emailSender.SendInvoice(ctx, client.Email, client.Name, inv, pdfBytes); err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Str("to", client.Email).Msg("fallo el envío de la factura")
		return fmt.Errorf("%w: enviar correo: %v", domain.ErrExternalService, err)
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("to", client.Email).Msg("factura enviada al cliente")
	return nil
}

// Void anula la factura (draft o sent -> void). No hay camino de regreso.
func (uc *InvoiceUseCase) Void(ctx context.Context, agencyID, invoiceID string) error {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == entity.InvoiceStatusVoid {
		return domain.ErrInvalidState
	}
	return uc.invoiceRepo.SetStatus(inv.ID, entity.InvoiceStatusVoid, time.Now())
}

// renderPDF arma los datos que necesita el generador y produce los bytes.
func (uc *InvoiceUseCase) renderPDF(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	agency, err := uc.agencyRepo.GetByID(inv.AgencyID)
	if err != nil || agency == nil {
		return nil, fmt.Errorf("pdf: obtener agencia: %w", err)
	}
	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil || client == nil {
		return nil, fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	payments, err := uc.paymentRepo.ListByInvoiceID(inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener pagos: %w", err)
	}
	bal := domainbilling.ComputeBalance(inv.Total, payments)
	pdfBytes, err := uc.pdfGen.GenerateInvoicePDF(ctx, inv, agency, client, items, bal)
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, nil
}

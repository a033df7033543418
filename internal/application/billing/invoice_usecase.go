package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	domainbilling "github.com/facturio/billing-api/internal/domain/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// InvoiceUseCase cubre el ciclo de vida completo de una factura: creación y
// edición del borrador, generación del PDF, finalización (draft -> sent),
// envío al cliente, anulación y lecturas con saldo derivado.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
	agencyRepo  repository.AgencyRepository
	pdfGen      InvoicePDFGenerator
	pdfStore    PDFStore
	emailSender InvoiceEmailSender
	log         zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	agencyRepo repository.AgencyRepository,
	pdfGen InvoicePDFGenerator,
	pdfStore PDFStore,
	emailSender InvoiceEmailSender,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		agencyRepo:  agencyRepo,
		pdfGen:      pdfGen,
		pdfStore:    pdfStore,
		emailSender: emailSender,
		log:         log,
	}
}

// CreateDraft crea una factura en borrador. La numeración y el contador de
// cupo mensual se resuelven dentro de la transacción con incrementos atómicos.
func (uc *InvoiceUseCase) CreateDraft(ctx context.Context, agencyID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	agency, client, totals, dueDate, err := uc.validateDraftInput(agencyID, in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	currency := in.Currency
	if currency == "" {
		currency = agency.DefaultCurrency
	}

	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		AgencyID:  agencyID,
		ClientID:  in.ClientID,
		Title:     in.Title,
		Currency:  currency,
		TaxRate:   domainbilling.NormalizeTaxRate(in.TaxRate),
		Subtotal:  totals.Subtotal,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
		Status:    entity.InvoiceStatusDraft,
		Notes:     in.Notes,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := buildInvoiceItems(inv.ID, in.Items)

	err = uc.txRunner.RunInvoice(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		agencyRepo repository.AgencyRepository,
	) error {
		if err := checkAndConsumeQuota(agencyRepo, agency, now); err != nil {
			return err
		}
		number, err := agencyRepo.NextInvoiceNumber(agencyID)
		if err != nil {
			return err
		}
		inv.Number = number
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		for _, item := range items {
			if err := invoiceRepo.CreateItem(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return uc.toResponse(inv, items, nil, client.Name, time.Now()), nil
}

// UpdateDraft reescribe una factura en borrador (cabecera + líneas). Facturas
// finalizadas o anuladas son inmutables.
func (uc *InvoiceUseCase) UpdateDraft(ctx context.Context, agencyID, invoiceID string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsDraft() {
		return nil, domain.ErrInvalidState
	}
	agency, client, totals, dueDate, err := uc.validateDraftInput(agencyID, in)
	if err != nil {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = agency.DefaultCurrency
	}
	inv.ClientID = in.ClientID
	inv.Title = in.Title
	inv.Currency = currency
	inv.TaxRate = domainbilling.NormalizeTaxRate(in.TaxRate)
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.Total = totals.Total
	inv.Notes = in.Notes
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()
	items := buildInvoiceItems(inv.ID, in.Items)

	err = uc.txRunner.RunInvoice(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.AgencyRepository,
	) error {
		if err := invoiceRepo.UpdateDraft(inv); err != nil {
			return err
		}
		if err := invoiceRepo.DeleteItemsByInvoiceID(inv.ID); err != nil {
			return err
		}
		for _, item := range items {
			if err := invoiceRepo.CreateItem(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv, items, nil, client.Name, time.Now()), nil
}

// DeleteDraft elimina una factura en borrador. El cupo mensual consumido al
// crearla no se devuelve.
func (uc *InvoiceUseCase) DeleteDraft(ctx context.Context, agencyID, invoiceID string) error {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return err
	}
	if !inv.IsDraft() {
		return domain.ErrInvalidState
	}
	return uc.invoiceRepo.DeleteDraft(inv.ID)
}

// Get devuelve la factura con sus líneas y el saldo derivado del ledger.
func (uc *InvoiceUseCase) Get(ctx context.Context, agencyID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.ownedInvoice(agencyID, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(inv.ID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByInvoiceID(inv.ID)
	if err != nil {
		return nil, err
	}
	clientName := ""
	if client, _ := uc.clientRepo.GetByID(inv.ClientID); client != nil {
		clientName = client.Name
	}
	return uc.toResponse(inv, items, payments, clientName, time.Now()), nil
}

// List devuelve las facturas de la agencia con su estado derivado. El saldo se
// recalcula por factura desde el ledger: no hay acumulados cacheados.
func (uc *InvoiceUseCase) List(ctx context.Context, agencyID string, limit, offset int) (*dto.InvoiceListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.invoiceRepo.ListByAgency(agencyID, limit, offset)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := &dto.InvoiceListResponse{
		Invoices: make([]dto.InvoiceResponse, 0, len(list)),
		Page:     dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, inv := range list {
		payments, err := uc.paymentRepo.ListByInvoiceID(inv.ID)
		if err != nil {
			return nil, err
		}
		out.Invoices = append(out.Invoices, *uc.toResponse(inv, nil, payments, "", now))
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// ownedInvoice carga la factura y verifica tenencia. Un mismatch de agencia se
// reporta como not-found para no filtrar existencia entre tenants.
func (uc *InvoiceUseCase) ownedInvoice(agencyID, invoiceID string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.AgencyID != agencyID {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// validateDraftInput valida el request de borrador y resuelve agencia,
// cliente, totales y vencimiento.
func (uc *InvoiceUseCase) validateDraftInput(agencyID string, in dto.CreateInvoiceRequest) (*entity.Agency, *entity.Client, domainbilling.Totals, *time.Time, error) {
	var zero domainbilling.Totals
	if in.ClientID == "" || in.Title == "" || len(in.Items) == 0 {
		return nil, nil, zero, nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil || client == nil || client.AgencyID != agencyID {
		return nil, nil, zero, nil, domain.ErrNotFound
	}
	agency, err := uc.agencyRepo.GetByID(agencyID)
	if err != nil || agency == nil {
		return nil, nil, zero, nil, domain.ErrNotFound
	}
	lines := make([]domainbilling.Line, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Title == "" {
			return nil, nil, zero, nil, domain.ErrInvalidInput
		}
		lines = append(lines, domainbilling.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	totals, err := domainbilling.ComputeTotals(lines, domainbilling.NormalizeTaxRate(in.TaxRate))
	if err != nil {
		return nil, nil, zero, nil, err
	}
	var dueDate *time.Time
	if in.DueDate != "" {
		d, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return nil, nil, zero, nil, domain.ErrInvalidInput
		}
		dueDate = &d
	}
	return agency, client, totals, dueDate, nil
}

// buildInvoiceItems materializa las líneas del request con sus montos.
func buildInvoiceItems(invoiceID string, items []dto.LineItemRequest) []*entity.InvoiceItem {
	out := make([]*entity.InvoiceItem, 0, len(items))
	for i, it := range items {
		out = append(out, &entity.InvoiceItem{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Quantity.Mul(it.UnitPrice).Round(2),
			Position:    i,
		})
	}
	return out
}

// checkAndConsumeQuota incrementa el contador mensual dentro de la tx y valida
// el cupo del plan. El contador nunca se decrementa: facturas luego eliminadas
// siguen contando contra el mes en que se crearon.
func checkAndConsumeQuota(agencyRepo repository.AgencyRepository, agency *entity.Agency, now time.Time) error {
	limit := entity.MonthlyInvoiceLimit(agency.Plan)
	usage, err := agencyRepo.IncrementMonthlyUsage(agency.ID, now.Format("2006-01"))
	if err != nil {
		return err
	}
	if limit > 0 && usage > limit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// toResponse arma el DTO con los valores derivados del ledger.
func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, items []*entity.InvoiceItem, payments []*entity.Payment, clientName string, now time.Time) *dto.InvoiceResponse {
	bal := domainbilling.ComputeBalance(inv.Total, payments)
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		AgencyID:      inv.AgencyID,
		ClientID:      inv.ClientID,
		ClientName:    clientName,
		Number:        inv.Number,
		Title:         inv.Title,
		Currency:      inv.Currency,
		TaxRate:       inv.TaxRate,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Status:        inv.Status,
		PaidAmount:    bal.PaidAmount,
		BalanceDue:    bal.BalanceDue,
		PaymentStatus: bal.Status,
		DisplayStatus: domainbilling.DisplayStatus(inv.Status, bal.Status),
		Overdue:       inv.Status == entity.InvoiceStatusSent && domainbilling.IsOverdue(bal.Status, inv.DueDate, now),
		PDFURL:        inv.PDFURL,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		Items:         make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	if inv.DueDate != nil {
		resp.DueDate = inv.DueDate.Format("2006-01-02")
	}
	if inv.SentAt != nil {
		resp.SentAt = inv.SentAt.Format(time.RFC3339)
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		})
	}
	return resp
}

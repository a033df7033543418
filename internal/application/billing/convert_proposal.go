package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// ConvertProposalUseCase convierte una propuesta aprobada en una factura
// borrador. La conversión es one-shot: el puntero converted_to_invoice_id se
// escribe exactamente una vez y los reintentos devuelven la factura existente.
type ConvertProposalUseCase struct {
	txRunner     BillingTxRunner
	proposalRepo repository.ProposalRepository
	agencyRepo   repository.AgencyRepository
	log          zerolog.Logger
}

// NewConvertProposalUseCase construye el caso de uso.
func NewConvertProposalUseCase(
	txRunner BillingTxRunner,
	proposalRepo repository.ProposalRepository,
	agencyRepo repository.AgencyRepository,
	log zerolog.Logger,
) *ConvertProposalUseCase {
	return &ConvertProposalUseCase{
		txRunner:     txRunner,
		proposalRepo: proposalRepo,
		agencyRepo:   agencyRepo,
		log:          log,
	}
}

// Convert ejecuta la conversión en UNA transacción: cupo mensual, consecutivo,
// cabecera de factura, copia snapshot de las líneas y puntero one-way. Si
// cualquier paso falla no queda ninguna fila huérfana.
//
// Guards en orden: tenencia (not-found), estado approved (invalid-state),
// conversión previa (already-converted con la factura existente), cupo del
// plan (quota). El guard definitivo de idempotencia es el UPDATE condicional
// de SetConvertedInvoice: dos conversiones concurrentes compiten por esa fila
// y la perdedora se resuelve como already-converted tras el rollback.
func (uc *ConvertProposalUseCase) Convert(ctx context.Context, agencyID, proposalID string) (*dto.ConvertProposalResponse, error) {
	proposal, err := uc.ownedProposal(agencyID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != entity.ProposalStatusApproved {
		return nil, domain.ErrInvalidState
	}
	if proposal.ConvertedToInvoiceID != "" {
		return nil, &domain.AlreadyConvertedError{InvoiceID: proposal.ConvertedToInvoiceID}
	}
	agency, err := uc.agencyRepo.GetByID(agencyID)
	if err != nil || agency == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	// La factura se emite en la moneda de la agencia; la de la propuesta solo
	// sobrevive si la agencia no tiene moneda por defecto configurada.
	currency := agency.DefaultCurrency
	if currency == "" {
		currency = proposal.Currency
	}

	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		AgencyID:  agencyID,
		ClientID:  proposal.ClientID,
		Title:     proposal.Title,
		Currency:  currency,
		TaxRate:   proposal.TaxRate,
		Subtotal:  proposal.Subtotal,
		TaxAmount: proposal.TaxAmount,
		Total:     proposal.Total,
		Status:    entity.InvoiceStatusDraft,
		Notes:     proposal.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.txRunner.RunConversion(ctx, func(
		proposalRepo repository.ProposalRepository,
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
		items, err := proposalRepo.GetItemsByProposalID(proposal.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := invoiceRepo.CreateItem(&entity.InvoiceItem{
				ID:          uuid.New().String(),
				InvoiceID:   inv.ID,
				Title:       it.Title,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Amount:      it.Amount,
				Position:    it.Position,
			}); err != nil {
				return err
			}
		}
		return proposalRepo.SetConvertedInvoice(proposal.ID, inv.ID, now)
	})
	if err != nil {
		// Perdimos la carrera del puntero: otra conversión ya se confirmó. La
		// tx completa se revirtió, así que releemos y devolvemos la existente.
		if errors.Is(err, domain.ErrDuplicate) {
			if fresh, ferr := uc.proposalRepo.GetByID(proposal.ID); ferr == nil && fresh != nil && fresh.ConvertedToInvoiceID != "" {
				return nil, &domain.AlreadyConvertedError{InvoiceID: fresh.ConvertedToInvoiceID}
			}
		}
		return nil, err
	}

	uc.log.Info().
		Str("proposal_id", proposal.ID).
		Str("invoice_id", inv.ID).
		Int64("number", inv.Number).
		Msg("propuesta convertida en factura")

	return &dto.ConvertProposalResponse{InvoiceID: inv.ID, InvoiceNumber: inv.Number}, nil
}

func (uc *ConvertProposalUseCase) ownedProposal(agencyID, proposalID string) (*entity.Proposal, error) {
	proposal, err := uc.proposalRepo.GetByID(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil || proposal.AgencyID != agencyID {
		return nil, domain.ErrNotFound
	}
	return proposal, nil
}

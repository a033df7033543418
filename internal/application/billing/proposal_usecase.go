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

// ProposalUseCase CRUD de propuestas y su máquina de estados comercial
// (draft -> sent -> approved/rejected). La conversión a factura vive en
// ConvertProposalUseCase.
type ProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	clientRepo   repository.ClientRepository
	agencyRepo   repository.AgencyRepository
	log          zerolog.Logger
}

// NewProposalUseCase construye el caso de uso.
func NewProposalUseCase(
	proposalRepo repository.ProposalRepository,
	clientRepo repository.ClientRepository,
	agencyRepo repository.AgencyRepository,
	log zerolog.Logger,
) *ProposalUseCase {
	return &ProposalUseCase{
		proposalRepo: proposalRepo,
		clientRepo:   clientRepo,
		agencyRepo:   agencyRepo,
		log:          log,
	}
}

// Create crea una propuesta en borrador. A diferencia de las facturas, las
// propuestas no consumen numeración ni cupo mensual.
func (uc *ProposalUseCase) Create(ctx context.Context, agencyID string, in dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	agency, totals, err := uc.validateProposalInput(agencyID, in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	currency := in.Currency
	if currency == "" {
		currency = agency.DefaultCurrency
	}
	proposal := &entity.Proposal{
		ID:        uuid.New().String(),
		AgencyID:  agencyID,
		ClientID:  in.ClientID,
		Title:     in.Title,
		Currency:  currency,
		TaxRate:   domainbilling.NormalizeTaxRate(in.TaxRate),
		Subtotal:  totals.Subtotal,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
		Status:    entity.ProposalStatusDraft,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.proposalRepo.Create(proposal); err != nil {
		return nil, err
	}
	items := buildProposalItems(proposal.ID, in.Items)
	for _, item := range items {
		if err := uc.proposalRepo.CreateItem(item); err != nil {
			return nil, err
		}
	}
	return toProposalResponse(proposal, items), nil
}

// Update reescribe una propuesta en borrador (cabecera + líneas). Propuestas
// enviadas, resueltas o convertidas son inmutables.
func (uc *ProposalUseCase) Update(ctx context.Context, agencyID, proposalID string, in dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	proposal, err := uc.ownedProposal(agencyID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != entity.ProposalStatusDraft {
		return nil, domain.ErrInvalidState
	}
	agency, totals, err := uc.validateProposalInput(agencyID, in)
	if err != nil {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = agency.DefaultCurrency
	}
	proposal.ClientID = in.ClientID
	proposal.Title = in.Title
	proposal.Currency = currency
	proposal.TaxRate = domainbilling.NormalizeTaxRate(in.TaxRate)
	proposal.Subtotal = totals.Subtotal
	proposal.TaxAmount = totals.TaxAmount
	proposal.Total = totals.Total
	proposal.Notes = in.Notes
	proposal.UpdatedAt = time.Now()

	if err := uc.proposalRepo.UpdateDraft(proposal); err != nil {
		return nil, err
	}
	if err := uc.proposalRepo.DeleteItemsByProposalID(proposal.ID); err != nil {
		return nil, err
	}
	items := buildProposalItems(proposal.ID, in.Items)
	for _, item := range items {
		if err := uc.proposalRepo.CreateItem(item); err != nil {
			return nil, err
		}
	}
	return toProposalResponse(proposal, items), nil
}

// UpdateStatus avanza la máquina de estados comercial. Transiciones válidas:
// draft -> sent|approved|rejected y sent -> approved|rejected. Los estados
// approved y rejected son terminales.
func (uc *ProposalUseCase) UpdateStatus(ctx context.Context, agencyID, proposalID string, in dto.UpdateProposalStatusRequest) (*dto.ProposalResponse, error) {
	proposal, err := uc.ownedProposal(agencyID, proposalID)
	if err != nil {
		return nil, err
	}
	if !validProposalTransition(proposal.Status, in.Status) {
		return nil, domain.ErrInvalidState
	}
	now := time.Now()
	if err := uc.proposalRepo.UpdateStatus(proposal.ID, in.Status, now); err != nil {
		return nil, err
	}
	proposal.Status = in.Status
	proposal.UpdatedAt = now
	uc.log.Info().Str("proposal_id", proposal.ID).Str("status", in.Status).Msg("propuesta actualizada")
	return toProposalResponse(proposal, nil), nil
}

// Get devuelve la propuesta con sus líneas.
func (uc *ProposalUseCase) Get(ctx context.Context, agencyID, proposalID string) (*dto.ProposalResponse, error) {
	proposal, err := uc.ownedProposal(agencyID, proposalID)
	if err != nil {
		return nil, err
	}
	items, err := uc.proposalRepo.GetItemsByProposalID(proposal.ID)
	if err != nil {
		return nil, err
	}
	return toProposalResponse(proposal, items), nil
}

// List devuelve las propuestas de la agencia paginadas.
func (uc *ProposalUseCase) List(ctx context.Context, agencyID string, limit, offset int) ([]dto.ProposalResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.proposalRepo.ListByAgency(agencyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProposalResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProposalResponse(p, nil))
	}
	return out, nil
}

// Delete elimina una propuesta no convertida. La factura creada por una
// conversión previa debe sobrevivir a su propuesta, así que las convertidas no
// se eliminan.
func (uc *ProposalUseCase) Delete(ctx context.Context, agencyID, proposalID string) error {
	proposal, err := uc.ownedProposal(agencyID, proposalID)
	if err != nil {
		return err
	}
	if proposal.ConvertedToInvoiceID != "" {
		return domain.ErrInvalidState
	}
	return uc.proposalRepo.Delete(proposal.ID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (uc *ProposalUseCase) ownedProposal(agencyID, proposalID string) (*entity.Proposal, error) {
	proposal, err := uc.proposalRepo.GetByID(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil || proposal.AgencyID != agencyID {
		return nil, domain.ErrNotFound
	}
	return proposal, nil
}

// validateProposalInput valida el request y resuelve agencia y totales. El
// cliente es opcional en propuestas; si viene, debe pertenecer a la agencia.
func (uc *ProposalUseCase) validateProposalInput(agencyID string, in dto.CreateProposalRequest) (*entity.Agency, domainbilling.Totals, error) {
	var zero domainbilling.Totals
	if in.Title == "" || len(in.Items) == 0 {
		return nil, zero, domain.ErrInvalidInput
	}
	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(in.ClientID)
		if err != nil || client == nil || client.AgencyID != agencyID {
			return nil, zero, domain.ErrNotFound
		}
	}
	agency, err := uc.agencyRepo.GetByID(agencyID)
	if err != nil || agency == nil {
		return nil, zero, domain.ErrNotFound
	}
	lines := make([]domainbilling.Line, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Title == "" {
			return nil, zero, domain.ErrInvalidInput
		}
		lines = append(lines, domainbilling.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	totals, err := domainbilling.ComputeTotals(lines, domainbilling.NormalizeTaxRate(in.TaxRate))
	if err != nil {
		return nil, zero, err
	}
	return agency, totals, nil
}

func validProposalTransition(from, to string) bool {
	switch from {
	case entity.ProposalStatusDraft:
		return to == entity.ProposalStatusSent || to == entity.ProposalStatusApproved || to == entity.ProposalStatusRejected
	case entity.ProposalStatusSent:
		return to == entity.ProposalStatusApproved || to == entity.ProposalStatusRejected
	default:
		return false
	}
}

func buildProposalItems(proposalID string, items []dto.LineItemRequest) []*entity.ProposalItem {
	out := make([]*entity.ProposalItem, 0, len(items))
	for i, it := range items {
		out = append(out, &entity.ProposalItem{
			ID:          uuid.New().String(),
			ProposalID:  proposalID,
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

func toProposalResponse(p *entity.Proposal, items []*entity.ProposalItem) *dto.ProposalResponse {
	resp := &dto.ProposalResponse{
		ID:                   p.ID,
		AgencyID:             p.AgencyID,
		ClientID:             p.ClientID,
		Title:                p.Title,
		Currency:             p.Currency,
		TaxRate:              p.TaxRate,
		Subtotal:             p.Subtotal,
		TaxAmount:            p.TaxAmount,
		Total:                p.Total,
		Status:               p.Status,
		Notes:                p.Notes,
		ConvertedToInvoiceID: p.ConvertedToInvoiceID,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		Items:                make([]dto.ProposalItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.ProposalItemResponse{
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

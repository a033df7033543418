package repository

import (
	"time"

	"github.com/facturio/billing-api/internal/domain/entity"
)

// ProposalRepository define el puerto de persistencia para Proposal y sus líneas.
type ProposalRepository interface {
	Create(proposal *entity.Proposal) error
	CreateItem(item *entity.ProposalItem) error
	UpdateDraft(proposal *entity.Proposal) error
	DeleteItemsByProposalID(proposalID string) error
	UpdateStatus(proposalID, status string, updatedAt time.Time) error
	// SetConvertedInvoice escribe el puntero one-way de conversión. Se escribe
	// exactamente una vez; el guard de idempotencia vive en el caso de uso.
	SetConvertedInvoice(proposalID, invoiceID string, updatedAt time.Time) error
	GetByID(id string) (*entity.Proposal, error)
	GetItemsByProposalID(proposalID string) ([]*entity.ProposalItem, error)
	ListByAgency(agencyID string, limit, offset int) ([]*entity.Proposal, error)
	Delete(id string) error
}

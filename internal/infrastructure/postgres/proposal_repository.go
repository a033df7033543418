package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

// ProposalRepo implementación de ProposalRepository (usable con pool o tx).
type ProposalRepo struct {
	q Querier
}

// NewProposalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProposalRepository(q Querier) *ProposalRepo {
	return &ProposalRepo{q: q}
}

const proposalColumns = `
	id, agency_id, COALESCE(client_id, ''), title, currency,
	tax_rate, subtotal, tax_amount, total, status,
	COALESCE(notes, ''), COALESCE(converted_to_invoice_id, ''),
	created_at, updated_at`

// Create persiste la cabecera de la propuesta.
func (r *ProposalRepo) Create(proposal *entity.Proposal) error {
	if proposal.ID == "" {
		proposal.ID = uuid.New().String()
	}
	query := `
		INSERT INTO proposals (id, agency_id, client_id, title, currency, tax_rate, subtotal, tax_amount, total, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		proposal.ID, proposal.AgencyID, nullIfEmpty(proposal.ClientID),
		proposal.Title, proposal.Currency,
		proposal.TaxRate, proposal.Subtotal, proposal.TaxAmount, proposal.Total,
		proposal.Status, nullIfEmpty(proposal.Notes),
		proposal.CreatedAt, proposal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la propuesta.
func (r *ProposalRepo) CreateItem(item *entity.ProposalItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO proposal_items (id, proposal_id, title, description, quantity, unit_price, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ProposalID, item.Title, nullIfEmpty(item.Description),
		item.Quantity, item.UnitPrice, item.Amount, item.Position,
	)
	if err != nil {
		return fmt.Errorf("insert proposal item: %w", err)
	}
	return nil
}

// UpdateDraft reescribe los campos editables de una propuesta en borrador.
func (r *ProposalRepo) UpdateDraft(proposal *entity.Proposal) error {
	query := `
		UPDATE proposals
		SET client_id = $2, title = $3, currency = $4, tax_rate = $5,
		    subtotal = $6, tax_amount = $7, total = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND status = 'draft'`
	tag, err := r.q.Exec(context.Background(), query,
		proposal.ID, nullIfEmpty(proposal.ClientID), proposal.Title, proposal.Currency, proposal.TaxRate,
		proposal.Subtotal, proposal.TaxAmount, proposal.Total,
		nullIfEmpty(proposal.Notes), proposal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update draft proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// DeleteItemsByProposalID elimina todas las líneas (reescritura del borrador).
func (r *ProposalRepo) DeleteItemsByProposalID(proposalID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM proposal_items WHERE proposal_id = $1`, proposalID)
	if err != nil {
		return fmt.Errorf("delete proposal items: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado comercial de la propuesta.
func (r *ProposalRepo) UpdateStatus(proposalID, status string, updatedAt time.Time) error {
	query := `UPDATE proposals SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, proposalID, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	return nil
}

// SetConvertedInvoice escribe el puntero one-way de conversión. El UPDATE
// condicional (IS NULL) es el guard de idempotencia definitivo: la segunda
// conversión concurrente no afecta filas y devuelve ErrDuplicate, lo que hace
// rollback de toda su transacción.
func (r *ProposalRepo) SetConvertedInvoice(proposalID, invoiceID string, updatedAt time.Time) error {
	query := `
		UPDATE proposals
		SET converted_to_invoice_id = $2, updated_at = $3
		WHERE id = $1 AND converted_to_invoice_id IS NULL`
	tag, err := r.q.Exec(context.Background(), query, proposalID, invoiceID, updatedAt)
	if err != nil {
		return fmt.Errorf("set converted invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// GetByID obtiene la propuesta por ID.
func (r *ProposalRepo) GetByID(id string) (*entity.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	var p entity.Proposal
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.AgencyID, &p.ClientID, &p.Title, &p.Currency,
		&p.TaxRate, &p.Subtotal, &p.TaxAmount, &p.Total, &p.Status,
		&p.Notes, &p.ConvertedToInvoiceID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return &p, nil
}

// GetItemsByProposalID obtiene las líneas en su orden original.
func (r *ProposalRepo) GetItemsByProposalID(proposalID string) ([]*entity.ProposalItem, error) {
	query := `
		SELECT id, proposal_id, title, COALESCE(description, ''), quantity, unit_price, amount, position
		FROM proposal_items WHERE proposal_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("list proposal items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProposalItem
	for rows.Next() {
		var it entity.ProposalItem
		if err := rows.Scan(&it.ID, &it.ProposalID, &it.Title, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount, &it.Position); err != nil {
			return nil, fmt.Errorf("scan proposal item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListByAgency devuelve las propuestas de la agencia, más recientes primero.
func (r *ProposalRepo) ListByAgency(agencyID string, limit, offset int) ([]*entity.Proposal, error) {
	query := `SELECT ` + proposalColumns + `
		FROM proposals WHERE agency_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, agencyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()
	var list []*entity.Proposal
	for rows.Next() {
		var p entity.Proposal
		if err := rows.Scan(
			&p.ID, &p.AgencyID, &p.ClientID, &p.Title, &p.Currency,
			&p.TaxRate, &p.Subtotal, &p.TaxAmount, &p.Total, &p.Status,
			&p.Notes, &p.ConvertedToInvoiceID,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina la propuesta y sus líneas.
func (r *ProposalRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM proposal_items WHERE proposal_id = $1`, id); err != nil {
		return fmt.Errorf("delete proposal items: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), `DELETE FROM proposals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	return nil
}

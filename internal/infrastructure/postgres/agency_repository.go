package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

var _ repository.AgencyRepository = (*AgencyRepo)(nil)

// AgencyRepo implementación de AgencyRepository (usable con pool o tx).
type AgencyRepo struct {
	q Querier
}

// NewAgencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAgencyRepository(q Querier) *AgencyRepo {
	return &AgencyRepo{q: q}
}

// Create persiste la agencia con el contador de facturas en cero.
func (r *AgencyRepo) Create(agency *entity.Agency) error {
	if agency.ID == "" {
		agency.ID = uuid.New().String()
	}
	query := `
		INSERT INTO agencies (id, name, default_currency, plan, invoice_counter, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		agency.ID, agency.Name, agency.DefaultCurrency, agency.Plan,
		agency.CreatedAt, agency.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert agency: %w", err)
	}
	return nil
}

// GetByID obtiene la agencia por ID.
func (r *AgencyRepo) GetByID(id string) (*entity.Agency, error) {
	query := `
		SELECT id, name, default_currency, plan, invoice_counter, created_at, updated_at
		FROM agencies WHERE id = $1`
	var a entity.Agency
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.Name, &a.DefaultCurrency, &a.Plan, &a.InvoiceCounter,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agency: %w", err)
	}
	return &a, nil
}

// UpdateSettings actualiza nombre, moneda por defecto y plan.
func (r *AgencyRepo) UpdateSettings(agency *entity.Agency) error {
	query := `
		UPDATE agencies
		SET name = $2, default_currency = $3, plan = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		agency.ID, agency.Name, agency.DefaultCurrency, agency.Plan, agency.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update agency: %w", err)
	}
	return nil
}

// NextInvoiceNumber incrementa y devuelve el consecutivo en una sola sentencia.
// El UPDATE atómico es lo que garantiza números únicos bajo concurrencia;
// un read-then-write aquí produciría duplicados.
func (r *AgencyRepo) NextInvoiceNumber(agencyID string) (int64, error) {
	query := `
		UPDATE agencies
		SET invoice_counter = invoice_counter + 1
		WHERE id = $1
		RETURNING invoice_counter`
	var number int64
	err := r.q.QueryRow(context.Background(), query, agencyID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("agencia no existe: %s", agencyID)
		}
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return number, nil
}

// IncrementMonthlyUsage incrementa y devuelve el contador del período con un
// upsert atómico. El contador es append-only: no existe operación inversa.
func (r *AgencyRepo) IncrementMonthlyUsage(agencyID, period string) (int64, error) {
	query := `
		INSERT INTO invoice_usage (agency_id, period, created_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (agency_id, period)
		DO UPDATE SET created_count = invoice_usage.created_count + 1
		RETURNING created_count`
	var count int64
	if err := r.q.QueryRow(context.Background(), query, agencyID, period).Scan(&count); err != nil {
		return 0, fmt.Errorf("increment monthly usage: %w", err)
	}
	return count, nil
}

// MonthlyUsage devuelve el contador del período sin modificarlo.
func (r *AgencyRepo) MonthlyUsage(agencyID, period string) (int64, error) {
	query := `SELECT created_count FROM invoice_usage WHERE agency_id = $1 AND period = $2`
	var count int64
	err := r.q.QueryRow(context.Background(), query, agencyID, period).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get monthly usage: %w", err)
	}
	return count, nil
}

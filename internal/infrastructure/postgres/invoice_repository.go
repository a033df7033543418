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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// La fila de factura guarda solo el estado de workflow; ningún método escribe
// estados de pago.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, agency_id, client_id, number, title, currency,
	tax_rate, subtotal, tax_amount, total, status,
	COALESCE(pdf_url, ''), COALESCE(notes, ''), due_date, sent_at,
	created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, agency_id, client_id, number, title, currency, tax_rate, subtotal, tax_amount, total, status, pdf_url, notes, due_date, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.AgencyID, invoice.ClientID, invoice.Number,
		invoice.Title, invoice.Currency,
		invoice.TaxRate, invoice.Subtotal, invoice.TaxAmount, invoice.Total,
		invoice.Status, nullIfEmpty(invoice.PDFURL), nullIfEmpty(invoice.Notes),
		invoice.DueDate, invoice.SentAt,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura ya existe: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la factura.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, title, description, quantity, unit_price, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, item.Title, nullIfEmpty(item.Description),
		item.Quantity, item.UnitPrice, item.Amount, item.Position,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// UpdateDraft reescribe los campos editables de un borrador. El WHERE incluye
// el estado: una factura que dejó de ser borrador entre lectura y escritura no
// se toca.
func (r *InvoiceRepo) UpdateDraft(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET client_id = $2, title = $3, currency = $4, tax_rate = $5,
		    subtotal = $6, tax_amount = $7, total = $8,
		    notes = $9, due_date = $10, updated_at = $11
		WHERE id = $1 AND status = 'draft'`
	tag, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.ClientID, invoice.Title, invoice.Currency, invoice.TaxRate,
		invoice.Subtotal, invoice.TaxAmount, invoice.Total,
		nullIfEmpty(invoice.Notes), invoice.DueDate, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update draft invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// DeleteItemsByInvoiceID elimina todas las líneas (reescritura del borrador).
func (r *InvoiceRepo) DeleteItemsByInvoiceID(invoiceID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return nil
}

// SetPDFURL guarda la referencia del artefacto PDF generado.
func (r *InvoiceRepo) SetPDFURL(invoiceID, pdfURL string, updatedAt time.Time) error {
	query := `UPDATE invoices SET pdf_url = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, invoiceID, pdfURL, updatedAt)
	if err != nil {
		return fmt.Errorf("set invoice pdf_url: %w", err)
	}
	return nil
}

// MarkSent ejecuta la transición draft -> sent. El WHERE condicional garantiza
// que sent_at se escribe una sola vez aun con dos finalizaciones concurrentes:
// la segunda no afecta filas y devuelve ErrInvalidState.
func (r *InvoiceRepo) MarkSent(invoiceID string, sentAt time.Time) error {
	query := `
		UPDATE invoices
		SET status = 'sent', sent_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'draft' AND sent_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, invoiceID, sentAt)
	if err != nil {
		return fmt.Errorf("mark invoice sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// SetStatus cambia el estado de workflow (anulación).
func (r *InvoiceRepo) SetStatus(invoiceID, status string, updatedAt time.Time) error {
	query := `UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, invoiceID, status, updatedAt)
	if err != nil {
		return fmt.Errorf("set invoice status: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.AgencyID, &inv.ClientID, &inv.Number, &inv.Title, &inv.Currency,
		&inv.TaxRate, &inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.Status,
		&inv.PDFURL, &inv.Notes, &inv.DueDate, &inv.SentAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetItemsByInvoiceID obtiene las líneas en su orden original.
func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, title, COALESCE(description, ''), quantity, unit_price, amount, position
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Title, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount, &it.Position); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListByAgency devuelve las facturas de la agencia, más recientes primero.
func (r *InvoiceRepo) ListByAgency(agencyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE agency_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, agencyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.AgencyID, &inv.ClientID, &inv.Number, &inv.Title, &inv.Currency,
			&inv.TaxRate, &inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.Status,
			&inv.PDFURL, &inv.Notes, &inv.DueDate, &inv.SentAt,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// DeleteDraft elimina un borrador con sus líneas. El DELETE condicional por
// estado protege contra una finalización concurrente.
func (r *InvoiceRepo) DeleteDraft(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	tag, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("delete draft invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

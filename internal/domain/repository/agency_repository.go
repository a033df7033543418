package repository

import "github.com/facturio/billing-api/internal/domain/entity"

// AgencyRepository define el puerto de persistencia para Agency, incluyendo
// los dos contadores que requieren atomicidad a nivel de base de datos.
type AgencyRepository interface {
	Create(agency *entity.Agency) error
	GetByID(id string) (*entity.Agency, error)
	// UpdateSettings actualiza nombre, moneda por defecto y plan.
	UpdateSettings(agency *entity.Agency) error

	// NextInvoiceNumber incrementa y devuelve el consecutivo de facturas de la
	// agencia en una sola sentencia atómica (UPDATE ... RETURNING). Nunca debe
	// implementarse como read-then-write: dos conversiones concurrentes
	// obtendrían el mismo número.
	NextInvoiceNumber(agencyID string) (int64, error)

	// IncrementMonthlyUsage incrementa y devuelve el contador de facturas
	// creadas en el período (formato "2006-01"). El contador es append-only:
	// eliminar una factura NO lo decrementa, por lo que el cupo mensual cuenta
	// también facturas luego eliminadas (comportamiento heredado y deliberado).
	IncrementMonthlyUsage(agencyID, period string) (int64, error)

	// MonthlyUsage devuelve el contador del período sin modificarlo.
	MonthlyUsage(agencyID, period string) (int64, error)
}

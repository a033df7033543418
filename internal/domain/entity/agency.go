package entity

import "time"

// Planes de suscripción y su límite de facturas creadas por mes calendario.
// Un límite 0 significa ilimitado.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
)

// MonthlyInvoiceLimit devuelve el cupo mensual de creación de facturas del plan.
// Planes desconocidos se tratan como free (el más restrictivo).
func MonthlyInvoiceLimit(plan string) int64 {
	switch plan {
	case PlanStarter:
		return 50
	case PlanPro:
		return 0 // ilimitado
	default:
		return 5
	}
}

// Agency representa un tenant. Todas las entidades quedan scoped por AgencyID.
// InvoiceCounter es el consecutivo de numeración de facturas; solo se modifica
// con un incremento atómico en la capa de datos.
type Agency struct {
	ID              string
	Name            string
	DefaultCurrency string // ISO 4217, ej. "USD", "EUR", "COP"
	Plan            string // free | starter | pro
	InvoiceCounter  int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

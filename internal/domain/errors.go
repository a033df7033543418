package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
//
// ErrNotFound cubre también el caso de recursos de otra agencia: nunca se
// distingue "no existe" de "no es tuyo" para no filtrar existencia entre
// tenants.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidState       = errors.New("operación no permitida en el estado actual")
	ErrPDFRequired        = errors.New("la factura requiere un PDF generado antes de finalizar")
	ErrQuotaExceeded      = errors.New("límite mensual de facturas del plan alcanzado")
	ErrExternalService    = errors.New("fallo de servicio externo")
)

// AlreadyConvertedError indica que la propuesta ya fue convertida. Incluye el
// ID de la factura existente para que el caller pueda redirigir en lugar de
// reintentar.
type AlreadyConvertedError struct {
	InvoiceID string
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("la propuesta ya fue convertida a la factura %s", e.InvoiceID)
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP. Todos los
// handlers pasan por aquí para que el mapeo sea uniforme:
//
//	validación          -> 400 VALIDATION
//	estado inválido     -> 400 INVALID_STATE
//	PDF faltante        -> 400 PDF_REQUIRED
//	ya convertida       -> 400 ALREADY_CONVERTED (+ invoice_id existente)
//	no autorizado       -> 401 UNAUTHORIZED
//	cupo del plan       -> 403 QUOTA_EXCEEDED
//	no encontrado       -> 404 NOT_FOUND (incluye recursos de otra agencia)
//	duplicado           -> 409 DUPLICATE
//	servicio externo    -> 502 EXTERNAL_SERVICE
func respondError(c *fiber.Ctx, err error) error {
	var converted *domain.AlreadyConvertedError
	switch {
	case errors.As(err, &converted):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:      "ALREADY_CONVERTED",
			Message:   "la propuesta ya fue convertida",
			InvoiceID: converted.InvoiceID,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrPDFRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "PDF_REQUIRED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrQuotaExceeded):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "QUOTA_EXCEEDED", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrEmailAlreadyExists), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrExternalService):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "EXTERNAL_SERVICE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

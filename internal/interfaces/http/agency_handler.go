package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/application/usecase"
)

// AgencyHandler maneja la configuración de la agencia del caller.
type AgencyHandler struct {
	uc *usecase.AgencyUseCase
}

// NewAgencyHandler construye el handler.
func NewAgencyHandler(uc *usecase.AgencyUseCase) *AgencyHandler {
	return &AgencyHandler{uc: uc}
}

// Get GET /api/agency
func (h *AgencyHandler) Get(c *fiber.Ctx) error {
	agency, err := h.uc.Get(c.Context(), GetAgencyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agency)
}

// Update PUT /api/agency (solo admin)
func (h *AgencyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateAgencyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	agency, err := h.uc.UpdateSettings(c.Context(), GetAgencyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agency)
}

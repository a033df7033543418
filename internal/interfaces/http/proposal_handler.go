package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/billing-api/internal/application/billing"
	"github.com/facturio/billing-api/internal/application/dto"
)

// ProposalHandler maneja propuestas y su conversión a factura.
type ProposalHandler struct {
	uc        *billing.ProposalUseCase
	convertUC *billing.ConvertProposalUseCase
}

// NewProposalHandler construye el handler.
func NewProposalHandler(uc *billing.ProposalUseCase, convertUC *billing.ConvertProposalUseCase) *ProposalHandler {
	return &ProposalHandler{uc: uc, convertUC: convertUC}
}

// Create POST /api/proposals
func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProposalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	proposal, err := h.uc.Create(c.Context(), GetAgencyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(proposal)
}

// Update PUT /api/proposals/:id (solo borradores)
func (h *ProposalHandler) Update(c *fiber.Ctx) error {
	var in dto.CreateProposalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	proposal, err := h.uc.Update(c.Context(), GetAgencyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(proposal)
}

// UpdateStatus POST /api/proposals/:id/status
func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateProposalStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	proposal, err := h.uc.UpdateStatus(c.Context(), GetAgencyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(proposal)
}

// Convert POST /api/proposals/:id/convert
func (h *ProposalHandler) Convert(c *fiber.Ctx) error {
	out, err := h.convertUC.Convert(c.Context(), GetAgencyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/proposals/:id
func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	proposal, err := h.uc.Get(c.Context(), GetAgencyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(proposal)
}

// List GET /api/proposals?limit=20&offset=0
func (h *ProposalHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(c.Context(), GetAgencyID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Delete DELETE /api/proposals/:id
func (h *ProposalHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetAgencyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/billing-api/internal/application/usecase"
)

// ReportHandler maneja los reportes de cartera e ingresos.
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Revenue GET /api/reports/revenue?months=12
func (h *ReportHandler) Revenue(c *fiber.Ctx) error {
	months, _ := strconv.Atoi(c.Query("months", "12"))
	out, err := h.uc.Revenue(c.Context(), GetAgencyID(c), months)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Summary GET /api/reports/summary
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.Context(), GetAgencyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

package handler

import (
	"log/slog"

	"labstock-service/app/domain"
	"labstock-service/app/handler/api/response"

	"github.com/gofiber/fiber/v2"
)

type ProcedureHandler struct {
	procedureUsecase domain.ProcedureService
}

func NewProcedureHandler(procedureUsecase domain.ProcedureService) *ProcedureHandler {
	return &ProcedureHandler{
		procedureUsecase: procedureUsecase,
	}
}

func (h *ProcedureHandler) GetByLaboratory(c *fiber.Ctx) error {
	laboratoryID := c.Params("laboratory_id")
	if laboratoryID == "" {
		slog.ErrorContext(c.Context(), "[procedureHandler] GetByLaboratory", "laboratoryID", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	procedures, err := h.procedureUsecase.GetByLaboratory(c.Context(), laboratoryID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[procedureHandler] GetByLaboratory", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(procedures))
}

func (h *ProcedureHandler) GetProcedureMaterials(c *fiber.Ctx) error {
	procedureID := c.Params("procedure_id")
	if procedureID == "" {
		slog.ErrorContext(c.Context(), "[procedureHandler] GetProcedureMaterials", "procedureID", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	materials, err := h.procedureUsecase.GetProcedureMaterials(c.Context(), procedureID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[procedureHandler] GetProcedureMaterials", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(materials))
}

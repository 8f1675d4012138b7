package handler

import (
	"log/slog"

	"labstock-service/app/domain"
	"labstock-service/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type BalanceHandler struct {
	balanceUsecase domain.BalanceService
	validator      *validator.Validate
}

func NewBalanceHandler(balanceUsecase domain.BalanceService, validator *validator.Validate) *BalanceHandler {
	return &BalanceHandler{
		balanceUsecase: balanceUsecase,
		validator:      validator,
	}
}

func (h *BalanceHandler) GetLaboratoryBalance(c *fiber.Ctx) error {
	laboratoryID := c.Params("laboratory_id")
	if laboratoryID == "" {
		slog.ErrorContext(c.Context(), "[balanceHandler] GetLaboratoryBalance", "laboratoryID", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	balance, err := h.balanceUsecase.GetLaboratoryBalance(c.Context(), laboratoryID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[balanceHandler] GetLaboratoryBalance", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(balance))
}

func (h *BalanceHandler) Deposit(c *fiber.Ctx) error {
	var req domain.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		slog.ErrorContext(c.Context(), "[balanceHandler] Deposit", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.ErrorContext(c.Context(), "[balanceHandler] Deposit", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	result, err := h.balanceUsecase.Deposit(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[balanceHandler] Deposit", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(result))
}

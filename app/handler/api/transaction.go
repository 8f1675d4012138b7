package handler

import (
	"log/slog"

	"labstock-service/app/domain"
	"labstock-service/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactionUsecase domain.TransactionService
	validator          *validator.Validate
}

func NewTransactionHandler(transactionUsecase domain.TransactionService, validator *validator.Validate) *TransactionHandler {
	return &TransactionHandler{
		transactionUsecase: transactionUsecase,
		validator:          validator,
	}
}

func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	laboratoryID := c.Params("laboratory_id")
	procedureID := c.Params("procedure_id")
	if laboratoryID == "" || procedureID == "" {
		slog.ErrorContext(c.Context(), "[transactionHandler] Withdraw", "params", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	result, err := h.transactionUsecase.Withdraw(c.Context(), laboratoryID, procedureID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[transactionHandler] Withdraw", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Success(result))
}

func (h *TransactionHandler) Complete(c *fiber.Ctx) error {
	transactionID := c.Params("transaction_id")
	if transactionID == "" {
		slog.ErrorContext(c.Context(), "[transactionHandler] Complete", "transactionID", "missing")
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	err := h.transactionUsecase.Complete(c.Context(), transactionID)
	if err != nil {
		slog.ErrorContext(c.Context(), "[transactionHandler] Complete", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(nil))
}

func (h *TransactionHandler) GetListTransactions(c *fiber.Ctx) error {
	param := domain.ListTransactionsRequest{}
	if err := c.QueryParser(&param); err != nil {
		slog.WarnContext(c.Context(), "[transactionHandler] GetListTransactions", "queryParser", err)
	}

	transactions, err := h.transactionUsecase.GetListTransactions(c.Context(), param)
	if err != nil {
		slog.ErrorContext(c.Context(), "[transactionHandler] GetListTransactions", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(transactions))
}

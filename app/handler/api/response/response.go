package response

import (
	"errors"

	"labstock-service/app/domain"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func Success(data any) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

func Error(err error) *Response {
	return &Response{
		Success: false,
		Error:   err.Error(),
	}
}

// FromError maps a domain error to an HTTP status and response body. Typed
// errors contribute a structured details payload so callers see, for
// example, every material shortfall at once.
func FromError(err error) (int, *Response) {
	resp := &Response{
		Success: false,
		Error:   err.Error(),
		Details: errorDetails(err),
	}

	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return fiber.StatusBadRequest, resp
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusUnprocessableEntity, resp
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, resp
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, resp
	default:
		return fiber.StatusInternalServerError, Error(domain.ErrInternal)
	}
}

func errorDetails(err error) any {
	var invalidID *domain.InvalidResourceIDError
	if errors.As(err, &invalidID) {
		return fiber.Map{"field": invalidID.Field, "value": invalidID.Value}
	}

	var notFound *domain.ProcedureNotFoundError
	if errors.As(err, &notFound) {
		return fiber.Map{"procedure_id": notFound.ProcedureID}
	}

	var notAvailable *domain.ProcedureNotAvailableInLaboratoryError
	if errors.As(err, &notAvailable) {
		return fiber.Map{
			"procedure_id":  notAvailable.ProcedureID,
			"laboratory_id": notAvailable.LaboratoryID,
		}
	}

	var noMaterials *domain.NoMaterialsDefinedError
	if errors.As(err, &noMaterials) {
		return fiber.Map{"procedure_id": noMaterials.ProcedureID}
	}

	var insufficient *domain.InsufficientMaterialsError
	if errors.As(err, &insufficient) {
		return fiber.Map{
			"materials": insufficient.Materials,
			"count":     len(insufficient.Materials),
		}
	}

	var reservation *domain.MaterialReservationError
	if errors.As(err, &reservation) {
		return fiber.Map{
			"original_error":      reservation.Err.Error(),
			"materials_attempted": reservation.Attempted,
		}
	}

	var creation *domain.TransactionCreationError
	if errors.As(err, &creation) {
		return fiber.Map{
			"original_error": creation.Err.Error(),
			"transaction_id": creation.TransactionID,
			"laboratory_id":  creation.LaboratoryID,
			"procedure_id":   creation.ProcedureID,
		}
	}

	var state *domain.InvalidTransactionStateError
	if errors.As(err, &state) {
		return fiber.Map{"current": state.Current, "target": state.Target}
	}

	return nil
}

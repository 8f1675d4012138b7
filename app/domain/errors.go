package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
)

// InvalidResourceIDError reports a malformed or empty identifier string.
type InvalidResourceIDError struct {
	Field string
	Value string
}

func (e *InvalidResourceIDError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func (e *InvalidResourceIDError) Unwrap() error { return ErrBadRequest }

// InsufficientStockError is raised by MaterialBalance.Reserve when the
// available stock cannot cover the requested quantity.
type InsufficientStockError struct {
	MaterialID MaterialID
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("cannot reserve %d of material %s, available: %d",
		e.Requested, e.MaterialID, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrValidation }

// InvalidReservationError is raised when consuming or releasing more than is
// currently reserved.
type InvalidReservationError struct {
	MaterialID MaterialID
	Requested  int64
	Reserved   int64
}

func (e *InvalidReservationError) Error() string {
	return fmt.Sprintf("cannot apply %d to reservation of material %s, reserved: %d",
		e.Requested, e.MaterialID, e.Reserved)
}

func (e *InvalidReservationError) Unwrap() error { return ErrValidation }

type InvalidQuantityError struct {
	Quantity int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be positive, got %d", e.Quantity)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrValidation }

// InvalidTransactionStateError reports an illegal transaction state
// transition.
type InvalidTransactionStateError struct {
	Current TransactionStatus
	Target  TransactionStatus
}

func (e *InvalidTransactionStateError) Error() string {
	return fmt.Sprintf("cannot move transaction from %s to %s", e.Current, e.Target)
}

func (e *InvalidTransactionStateError) Unwrap() error { return ErrValidation }

type AlreadyDeletedError struct {
	Resource string
}

func (e *AlreadyDeletedError) Error() string {
	return fmt.Sprintf("%s is already deleted", e.Resource)
}

func (e *AlreadyDeletedError) Unwrap() error { return ErrValidation }

type NotDeletedError struct {
	Resource string
}

func (e *NotDeletedError) Error() string {
	return fmt.Sprintf("%s is not deleted", e.Resource)
}

func (e *NotDeletedError) Unwrap() error { return ErrValidation }

type ProcedureNotFoundError struct {
	ProcedureID ProcedureID
}

func (e *ProcedureNotFoundError) Error() string {
	return fmt.Sprintf("procedure %s not found or inactive", e.ProcedureID)
}

func (e *ProcedureNotFoundError) Unwrap() error { return ErrNotFound }

type ProcedureNotAvailableInLaboratoryError struct {
	ProcedureID  ProcedureID
	LaboratoryID LaboratoryID
}

func (e *ProcedureNotAvailableInLaboratoryError) Error() string {
	return fmt.Sprintf("procedure %s not available in laboratory %s", e.ProcedureID, e.LaboratoryID)
}

func (e *ProcedureNotAvailableInLaboratoryError) Unwrap() error { return ErrValidation }

type NoMaterialsDefinedError struct {
	ProcedureID ProcedureID
}

func (e *NoMaterialsDefinedError) Error() string {
	return fmt.Sprintf("no materials defined for procedure %s", e.ProcedureID)
}

func (e *NoMaterialsDefinedError) Unwrap() error { return ErrValidation }

// MaterialShortage describes one material whose available stock cannot cover
// the required amount.
type MaterialShortage struct {
	MaterialID MaterialID `json:"material_id"`
	Required   int64      `json:"required"`
	Available  int64      `json:"available"`
}

// InsufficientMaterialsError carries every shortfall found during the stock
// sufficiency check, not just the first one.
type InsufficientMaterialsError struct {
	Materials []MaterialShortage
}

func (e *InsufficientMaterialsError) Error() string {
	if len(e.Materials) == 1 {
		return "1 material with insufficient stock"
	}
	return fmt.Sprintf("%d materials with insufficient stock", len(e.Materials))
}

func (e *InsufficientMaterialsError) Unwrap() error { return ErrValidation }

// MaterialReservationError wraps a failure during the reservation loop,
// keeping the ids attempted up to and including the failing material.
type MaterialReservationError struct {
	Err       error
	Attempted []MaterialID
}

func (e *MaterialReservationError) Error() string {
	return fmt.Sprintf("failed to reserve materials: %v", e.Err)
}

func (e *MaterialReservationError) Unwrap() error { return e.Err }

// TransactionCreationError wraps a transaction persistence failure.
type TransactionCreationError struct {
	Err           error
	TransactionID TransactionID
	LaboratoryID  LaboratoryID
	ProcedureID   ProcedureID
}

func (e *TransactionCreationError) Error() string {
	return fmt.Sprintf("failed to create transaction %s: %v", e.TransactionID, e.Err)
}

func (e *TransactionCreationError) Unwrap() error { return e.Err }

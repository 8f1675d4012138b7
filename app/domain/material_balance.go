package domain

import (
	"context"
	"database/sql"
	"time"
)

// MaterialBalance is the sole mutable source of truth for the stock of one
// material within one laboratory. Invariant: 0 <= Reserved <= Current.
type MaterialBalance struct {
	MaterialID   MaterialID   `json:"material_id"`
	LaboratoryID LaboratoryID `json:"laboratory_id"`
	Current      int64        `json:"current_stock"`
	Reserved     int64        `json:"reserved_stock"`
	LastUpdated  time.Time    `json:"last_updated"`
}

func (b *MaterialBalance) Available() int64 {
	return b.Current - b.Reserved
}

func (b *MaterialBalance) CanReserve(quantity int64) bool {
	return quantity > 0 && b.Available() >= quantity
}

func (b *MaterialBalance) HasSufficientStock(required int64) bool {
	return b.Available() >= required
}

func (b *MaterialBalance) Reserve(quantity int64) error {
	if !b.CanReserve(quantity) {
		return &InsufficientStockError{
			MaterialID: b.MaterialID,
			Requested:  quantity,
			Available:  b.Available(),
		}
	}
	b.Reserved += quantity
	b.LastUpdated = time.Now().UTC()
	return nil
}

func (b *MaterialBalance) ConsumeReservation(quantity int64) error {
	if b.Reserved < quantity {
		return &InvalidReservationError{
			MaterialID: b.MaterialID,
			Requested:  quantity,
			Reserved:   b.Reserved,
		}
	}
	b.Reserved -= quantity
	b.Current -= quantity
	b.LastUpdated = time.Now().UTC()
	return nil
}

func (b *MaterialBalance) ReleaseReservation(quantity int64) error {
	if b.Reserved < quantity {
		return &InvalidReservationError{
			MaterialID: b.MaterialID,
			Requested:  quantity,
			Reserved:   b.Reserved,
		}
	}
	b.Reserved -= quantity
	b.LastUpdated = time.Now().UTC()
	return nil
}

func (b *MaterialBalance) AddStock(quantity int64) error {
	if quantity <= 0 {
		return &InvalidQuantityError{Quantity: quantity}
	}
	b.Current += quantity
	b.LastUpdated = time.Now().UTC()
	return nil
}

type LaboratoryBalanceItem struct {
	MaterialID          MaterialID `json:"material_id"`
	MaterialName        string     `json:"material_name"`
	MaterialDescription string     `json:"material_description"`
	CurrentStock        int64      `json:"current_stock"`
	ReservedStock       int64      `json:"reserved_stock"`
	AvailableStock      int64      `json:"available_stock"`
	LastUpdated         time.Time  `json:"last_updated"`
}

type LaboratoryBalanceResponse struct {
	Materials      []LaboratoryBalanceItem `json:"materials"`
	TotalMaterials int                     `json:"total_materials"`
	TotalCurrent   int64                   `json:"total_current"`
	TotalReserved  int64                   `json:"total_reserved"`
	TotalAvailable int64                   `json:"total_available"`
}

type DepositRequest struct {
	MaterialID   string `json:"material_id" validate:"required"`
	LaboratoryID string `json:"laboratory_id" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
}

type MaterialBalanceRepository interface {
	Save(ctx context.Context, balance *MaterialBalance, tx *sql.Tx) error
	GetByMaterialAndLaboratory(ctx context.Context, materialID MaterialID, laboratoryID LaboratoryID) (MaterialBalance, error)
	GetByLaboratory(ctx context.Context, laboratoryID LaboratoryID) ([]MaterialBalance, error)
	GetMultipleByLaboratory(ctx context.Context, materialIDs []MaterialID, laboratoryID LaboratoryID) ([]MaterialBalance, error)
	LockForUpdate(ctx context.Context, materialID MaterialID, laboratoryID LaboratoryID, tx *sql.Tx) (MaterialBalance, error)

	WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error
}

type BalanceService interface {
	GetLaboratoryBalance(ctx context.Context, laboratoryID string) (LaboratoryBalanceResponse, error)
	Deposit(ctx context.Context, req DepositRequest) (TransactionResponse, error)
}

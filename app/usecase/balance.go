package usecase

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"time"

	"labstock-service/app/domain"
	"labstock-service/config"
	"labstock-service/pkg/ctxutil"
)

type balanceUsecase struct {
	balanceRepo     domain.MaterialBalanceRepository
	materialRepo    domain.MaterialRepository
	transactionRepo domain.TransactionRepository
	cfg             *config.Config
}

func NewBalanceUsecase(
	balanceRepo domain.MaterialBalanceRepository,
	materialRepo domain.MaterialRepository,
	transactionRepo domain.TransactionRepository,
	cfg *config.Config) domain.BalanceService {
	return &balanceUsecase{balanceRepo, materialRepo, transactionRepo, cfg}
}

// GetLaboratoryBalance lists the stock of every active material in a
// laboratory, sorted by material name, with running totals across the result
// set.
func (u *balanceUsecase) GetLaboratoryBalance(ctx context.Context, laboratoryID string) (domain.LaboratoryBalanceResponse, error) {
	var resp domain.LaboratoryBalanceResponse

	labID, err := domain.ParseLaboratoryID(laboratoryID)
	if err != nil {
		return resp, err
	}

	balances, err := u.balanceRepo.GetByLaboratory(ctx, labID)
	if err != nil {
		slog.ErrorContext(ctx, "[balanceUsecase] GetLaboratoryBalance", "getBalances", err)
		return resp, err
	}

	if len(balances) == 0 {
		resp.Materials = []domain.LaboratoryBalanceItem{}
		return resp, nil
	}

	materialIDs := make([]domain.MaterialID, 0, len(balances))
	for _, balance := range balances {
		materialIDs = append(materialIDs, balance.MaterialID)
	}

	materials, err := u.materialRepo.GetByMultipleIDs(ctx, materialIDs)
	if err != nil {
		slog.ErrorContext(ctx, "[balanceUsecase] GetLaboratoryBalance", "getMaterials", err)
		return resp, err
	}

	materialMap := make(map[domain.MaterialID]domain.Material, len(materials))
	for _, material := range materials {
		materialMap[material.ID] = material
	}

	items := make([]domain.LaboratoryBalanceItem, 0, len(balances))
	for _, balance := range balances {
		material, ok := materialMap[balance.MaterialID]
		if !ok || !material.IsActive() {
			continue
		}

		available := balance.Available()
		items = append(items, domain.LaboratoryBalanceItem{
			MaterialID:          material.ID,
			MaterialName:        material.Name,
			MaterialDescription: material.Description,
			CurrentStock:        balance.Current,
			ReservedStock:       balance.Reserved,
			AvailableStock:      available,
			LastUpdated:         balance.LastUpdated,
		})

		resp.TotalCurrent += balance.Current
		resp.TotalReserved += balance.Reserved
		resp.TotalAvailable += available
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].MaterialName < items[j].MaterialName
	})

	resp.Materials = items
	resp.TotalMaterials = len(items)
	return resp, nil
}

// Deposit adds stock to a (material, laboratory) balance, creating the
// balance row when absent, and records a DEPOSIT transaction alongside it.
func (u *balanceUsecase) Deposit(ctx context.Context, req domain.DepositRequest) (domain.TransactionResponse, error) {
	var resp domain.TransactionResponse

	materialID, err := domain.ParseMaterialID(req.MaterialID)
	if err != nil {
		return resp, err
	}
	labID, err := domain.ParseLaboratoryID(req.LaboratoryID)
	if err != nil {
		return resp, err
	}
	userIDStr, err := ctxutil.GetUserIDCtx(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[balanceUsecase] Deposit", "getUserIDCtx", err)
		return resp, domain.ErrInternal
	}
	userID, err := domain.ParseUserID(userIDStr)
	if err != nil {
		return resp, err
	}

	material, err := u.materialRepo.GetByID(ctx, materialID)
	if err != nil {
		slog.ErrorContext(ctx, "[balanceUsecase] Deposit", "getMaterial", err)
		return resp, err
	}
	if !material.IsActive() {
		return resp, domain.ErrNotFound
	}

	now := time.Now().UTC()
	transaction := domain.Transaction{
		ID:           domain.NewTransactionID(),
		Type:         domain.TransactionTypeDeposit,
		Status:       domain.TransactionStatusAuthorized,
		LaboratoryID: labID,
		UserID:       userID,
		CreatedAt:    now,
		AuthorizedAt: &now,
		Items: []domain.TransactionItem{
			{MaterialID: materialID, Quantity: req.Quantity},
		},
	}

	if err = u.balanceRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		balance, err := u.balanceRepo.LockForUpdate(ctx, materialID, labID, tx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				slog.ErrorContext(ctx, "[balanceUsecase] Deposit", "lockBalance", err)
				return err
			}
			balance = domain.MaterialBalance{
				MaterialID:   materialID,
				LaboratoryID: labID,
			}
		}

		if err := balance.AddStock(req.Quantity); err != nil {
			return err
		}
		if err := u.balanceRepo.Save(ctx, &balance, tx); err != nil {
			slog.ErrorContext(ctx, "[balanceUsecase] Deposit", "saveBalance", err)
			return err
		}

		if err := u.transactionRepo.Save(ctx, &transaction, tx); err != nil {
			slog.ErrorContext(ctx, "[balanceUsecase] Deposit", "saveTransaction", err)
			return &domain.TransactionCreationError{
				Err:           err,
				TransactionID: transaction.ID,
				LaboratoryID:  labID,
			}
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[balanceUsecase] Deposit", "withTransaction", err)
		return resp, err
	}

	slog.InfoContext(ctx, "[balanceUsecase] Deposit", "deposited", req.Quantity)
	return domain.TransactionResponse{
		TransactionID: transaction.ID,
		Type:          transaction.Type,
		Status:        transaction.Status,
		LaboratoryID:  transaction.LaboratoryID,
		CreatedAt:     transaction.CreatedAt,
		AuthorizedAt:  transaction.AuthorizedAt,
		Items:         transaction.Items,
	}, nil
}

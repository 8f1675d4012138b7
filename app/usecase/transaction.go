package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"labstock-service/app/domain"
	"labstock-service/config"
	"labstock-service/pkg/ctxutil"
)

type transactionUsecase struct {
	transactionRepo domain.TransactionRepository
	procedureRepo   domain.ProcedureRepository
	balanceRepo     domain.MaterialBalanceRepository
	materialRepo    domain.MaterialRepository
	deviceCommander domain.DeviceCommander
	cfg             *config.Config
}

func NewTransactionUsecase(
	transactionRepo domain.TransactionRepository,
	procedureRepo domain.ProcedureRepository,
	balanceRepo domain.MaterialBalanceRepository,
	materialRepo domain.MaterialRepository,
	deviceCommander domain.DeviceCommander,
	cfg *config.Config) domain.TransactionService {
	return &transactionUsecase{transactionRepo, procedureRepo, balanceRepo, materialRepo, deviceCommander, cfg}
}

// Withdraw authorizes and records a single withdrawal of every material the
// procedure requires, from one laboratory, on behalf of the acting user.
// Reservation and the ledger entry commit in one database transaction: either
// all balances are reserved and the transaction row exists, or nothing
// changed.
func (u *transactionUsecase) Withdraw(ctx context.Context, laboratoryID, procedureID string) (domain.TransactionResponse, error) {
	var resp domain.TransactionResponse

	labID, err := domain.ParseLaboratoryID(laboratoryID)
	if err != nil {
		return resp, err
	}
	procID, err := domain.ParseProcedureID(procedureID)
	if err != nil {
		return resp, err
	}
	userIDStr, err := ctxutil.GetUserIDCtx(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "getUserIDCtx", err)
		return resp, domain.ErrInternal
	}
	userID, err := domain.ParseUserID(userIDStr)
	if err != nil {
		return resp, err
	}

	procedure, err := u.procedureRepo.GetByID(ctx, procID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return resp, &domain.ProcedureNotFoundError{ProcedureID: procID}
		}
		slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "getProcedure", err)
		return resp, err
	}
	if !procedure.IsActive() {
		return resp, &domain.ProcedureNotFoundError{ProcedureID: procID}
	}

	slotID, err := u.resolveSlot(ctx, labID, procID)
	if err != nil {
		return resp, err
	}

	usages, err := u.procedureRepo.GetRequiredMaterials(ctx, procID)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "getRequiredMaterials", err)
		return resp, err
	}
	if len(usages) == 0 {
		return resp, &domain.NoMaterialsDefinedError{ProcedureID: procID}
	}

	if err := u.checkStockSufficiency(ctx, usages, labID); err != nil {
		return resp, err
	}

	transaction := domain.Transaction{
		ID:           domain.NewTransactionID(),
		Type:         domain.TransactionTypeWithdraw,
		Status:       domain.TransactionStatusAuthorized,
		LaboratoryID: labID,
		UserID:       userID,
		ProcedureID:  &procID,
	}

	if err = u.balanceRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := u.reserveMaterials(ctx, usages, labID, tx); err != nil {
			return err
		}

		items, err := u.buildTransactionItems(ctx, usages)
		if err != nil {
			slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "buildItems", err)
			return err
		}

		now := time.Now().UTC()
		transaction.CreatedAt = now
		transaction.AuthorizedAt = &now
		transaction.Items = items

		if err := u.transactionRepo.Save(ctx, &transaction, tx); err != nil {
			slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "saveTransaction", err)
			return &domain.TransactionCreationError{
				Err:           err,
				TransactionID: transaction.ID,
				LaboratoryID:  labID,
				ProcedureID:   procID,
			}
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "withTransaction", err)
		return resp, err
	}

	// Commit first, notify best effort: the ledger already reflects the
	// authorization, a dispenser that is offline must not revert it.
	if err := u.deviceCommander.SendWithdrawCommand(ctx, u.cfg.DeviceID, slotID); err != nil {
		slog.WarnContext(ctx, "[transactionUsecase] Withdraw", "sendWithdrawCommand", err)
	} else {
		slog.InfoContext(ctx, "[transactionUsecase] Withdraw", "dispensationCommandSent", slotID)
	}

	return domain.TransactionResponse{
		TransactionID: transaction.ID,
		Type:          transaction.Type,
		Status:        transaction.Status,
		LaboratoryID:  transaction.LaboratoryID,
		ProcedureID:   transaction.ProcedureID,
		CreatedAt:     transaction.CreatedAt,
		AuthorizedAt:  transaction.AuthorizedAt,
		Items:         transaction.Items,
	}, nil
}

func (u *transactionUsecase) resolveSlot(ctx context.Context, labID domain.LaboratoryID, procID domain.ProcedureID) (int, error) {
	labProcedures, err := u.procedureRepo.GetLaboratoryProcedures(ctx, labID)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "getLaboratoryProcedures", err)
		return 0, err
	}

	for _, lp := range labProcedures {
		if lp.LaboratoryID == labID && lp.ProcedureID == procID {
			return lp.SlotID, nil
		}
	}

	return 0, &domain.ProcedureNotAvailableInLaboratoryError{ProcedureID: procID, LaboratoryID: labID}
}

// checkStockSufficiency collects every shortfall before failing, so the
// caller sees all of them in one response. A material without a balance row
// counts as zero available.
func (u *transactionUsecase) checkStockSufficiency(ctx context.Context, usages []domain.ProcedureUsage, labID domain.LaboratoryID) error {
	materialIDs := make([]domain.MaterialID, 0, len(usages))
	for _, usage := range usages {
		materialIDs = append(materialIDs, usage.MaterialID)
	}

	balances, err := u.balanceRepo.GetMultipleByLaboratory(ctx, materialIDs, labID)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "getBalances", err)
		return err
	}

	balanceMap := make(map[domain.MaterialID]domain.MaterialBalance, len(balances))
	for _, balance := range balances {
		balanceMap[balance.MaterialID] = balance
	}

	var shortages []domain.MaterialShortage
	for _, usage := range usages {
		balance, ok := balanceMap[usage.MaterialID]
		if !ok {
			shortages = append(shortages, domain.MaterialShortage{
				MaterialID: usage.MaterialID,
				Required:   usage.RequiredAmount,
				Available:  0,
			})
			continue
		}
		if !balance.HasSufficientStock(usage.RequiredAmount) {
			shortages = append(shortages, domain.MaterialShortage{
				MaterialID: usage.MaterialID,
				Required:   usage.RequiredAmount,
				Available:  balance.Available(),
			})
		}
	}

	if len(shortages) > 0 {
		return &domain.InsufficientMaterialsError{Materials: shortages}
	}
	return nil
}

// reserveMaterials locks and reserves every balance inside the surrounding
// database transaction. A failure rolls the whole unit of work back, so no
// partial reservation ever survives.
func (u *transactionUsecase) reserveMaterials(ctx context.Context, usages []domain.ProcedureUsage, labID domain.LaboratoryID, tx *sql.Tx) error {
	var attempted []domain.MaterialID

	for _, usage := range usages {
		attempted = append(attempted, usage.MaterialID)

		balance, err := u.balanceRepo.LockForUpdate(ctx, usage.MaterialID, labID, tx)
		if err != nil {
			slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "lockBalance", err)
			return &domain.MaterialReservationError{Err: err, Attempted: attempted}
		}
		if err := balance.Reserve(usage.RequiredAmount); err != nil {
			return &domain.MaterialReservationError{Err: err, Attempted: attempted}
		}
		if err := u.balanceRepo.Save(ctx, &balance, tx); err != nil {
			slog.ErrorContext(ctx, "[transactionUsecase] Withdraw", "saveBalance", err)
			return &domain.MaterialReservationError{Err: err, Attempted: attempted}
		}
	}

	return nil
}

func (u *transactionUsecase) buildTransactionItems(ctx context.Context, usages []domain.ProcedureUsage) ([]domain.TransactionItem, error) {
	materialIDs := make([]domain.MaterialID, 0, len(usages))
	for _, usage := range usages {
		materialIDs = append(materialIDs, usage.MaterialID)
	}

	materials, err := u.materialRepo.GetByMultipleIDs(ctx, materialIDs)
	if err != nil {
		return nil, err
	}

	activeMaterials := make(map[domain.MaterialID]bool, len(materials))
	for _, material := range materials {
		if material.IsActive() {
			activeMaterials[material.ID] = true
		}
	}

	var items []domain.TransactionItem
	for _, usage := range usages {
		if activeMaterials[usage.MaterialID] {
			items = append(items, domain.TransactionItem{
				MaterialID: usage.MaterialID,
				Quantity:   usage.RequiredAmount,
			})
		}
	}

	return items, nil
}

// Complete moves an AUTHORIZED transaction through IN_PROGRESS to COMPLETED
// and consumes the reservations it holds.
func (u *transactionUsecase) Complete(ctx context.Context, transactionID string) error {
	txnID, err := domain.ParseTransactionID(transactionID)
	if err != nil {
		return err
	}

	transaction, err := u.transactionRepo.GetByID(ctx, txnID)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Complete", "getTransaction", err)
		return err
	}

	if err := transaction.StartProcessing(); err != nil {
		return err
	}

	if err = u.balanceRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, item := range transaction.Items {
			balance, err := u.balanceRepo.LockForUpdate(ctx, item.MaterialID, transaction.LaboratoryID, tx)
			if err != nil {
				slog.ErrorContext(ctx, "[transactionUsecase] Complete", "lockBalance", err)
				return err
			}
			if err := balance.ConsumeReservation(item.Quantity); err != nil {
				return err
			}
			if err := u.balanceRepo.Save(ctx, &balance, tx); err != nil {
				slog.ErrorContext(ctx, "[transactionUsecase] Complete", "saveBalance", err)
				return err
			}
		}

		if err := transaction.Complete(); err != nil {
			return err
		}
		if err := u.transactionRepo.UpdateStatus(ctx, &transaction, tx); err != nil {
			slog.ErrorContext(ctx, "[transactionUsecase] Complete", "updateStatus", err)
			return err
		}
		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] Complete", "withTransaction", err)
		return err
	}

	slog.InfoContext(ctx, "[transactionUsecase] Complete", "transactionCompleted", transaction.ID)
	return nil
}

func (u *transactionUsecase) GetListTransactions(ctx context.Context, param domain.ListTransactionsRequest) ([]domain.TransactionListItem, error) {
	filter, err := buildTransactionFilter(param)
	if err != nil {
		return nil, err
	}

	transactions, err := u.transactionRepo.GetWithFilters(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] GetListTransactions", "getWithFilters", err)
		return nil, err
	}

	if len(transactions) == 0 {
		return []domain.TransactionListItem{}, nil
	}

	procedures, err := u.loadProcedures(ctx, transactions)
	if err != nil {
		return nil, err
	}
	materials, err := u.loadMaterials(ctx, transactions)
	if err != nil {
		return nil, err
	}

	items := make([]domain.TransactionListItem, 0, len(transactions))
	for _, transaction := range transactions {
		item, err := u.buildListItem(ctx, transaction, procedures, materials)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func buildTransactionFilter(param domain.ListTransactionsRequest) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter

	if param.LaboratoryID != "" {
		labID, err := domain.ParseLaboratoryID(param.LaboratoryID)
		if err != nil {
			return filter, err
		}
		filter.LaboratoryID = &labID
	}
	if param.UserID != "" {
		userID, err := domain.ParseUserID(param.UserID)
		if err != nil {
			return filter, err
		}
		filter.UserID = &userID
	}
	if param.Type != "" {
		transactionType := domain.TransactionType(param.Type)
		switch transactionType {
		case domain.TransactionTypeWithdraw, domain.TransactionTypeDeposit, domain.TransactionTypeAdjustment:
			filter.Type = &transactionType
		default:
			return filter, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, param.Type)
		}
	}
	if param.Status != "" {
		status := domain.TransactionStatus(param.Status)
		switch status {
		case domain.TransactionStatusAuthorized, domain.TransactionStatusInProgress,
			domain.TransactionStatusCompleted, domain.TransactionStatusFailed:
			filter.Status = &status
		default:
			return filter, fmt.Errorf("%w: unknown transaction status %q", domain.ErrValidation, param.Status)
		}
	}
	if param.StartDate != "" {
		startDate, err := time.Parse(time.RFC3339, param.StartDate)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid start_date", domain.ErrValidation)
		}
		filter.StartDate = &startDate
	}
	if param.EndDate != "" {
		endDate, err := time.Parse(time.RFC3339, param.EndDate)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid end_date", domain.ErrValidation)
		}
		filter.EndDate = &endDate
	}

	return filter, nil
}

func (u *transactionUsecase) loadProcedures(ctx context.Context, transactions []domain.Transaction) (map[domain.ProcedureID]domain.Procedure, error) {
	procedures := make(map[domain.ProcedureID]domain.Procedure)

	for _, transaction := range transactions {
		if transaction.ProcedureID == nil {
			continue
		}
		procID := *transaction.ProcedureID
		if _, ok := procedures[procID]; ok {
			continue
		}

		procedure, err := u.procedureRepo.GetByID(ctx, procID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			slog.ErrorContext(ctx, "[transactionUsecase] GetListTransactions", "getProcedure", err)
			return nil, err
		}
		if procedure.IsActive() {
			procedures[procID] = procedure
		}
	}

	return procedures, nil
}

func (u *transactionUsecase) loadMaterials(ctx context.Context, transactions []domain.Transaction) (map[domain.MaterialID]domain.Material, error) {
	seen := make(map[domain.MaterialID]bool)
	var materialIDs []domain.MaterialID
	for _, transaction := range transactions {
		for _, item := range transaction.Items {
			if !seen[item.MaterialID] {
				seen[item.MaterialID] = true
				materialIDs = append(materialIDs, item.MaterialID)
			}
		}
	}

	materials := make(map[domain.MaterialID]domain.Material)
	if len(materialIDs) == 0 {
		return materials, nil
	}

	found, err := u.materialRepo.GetByMultipleIDs(ctx, materialIDs)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] GetListTransactions", "getMaterials", err)
		return nil, err
	}
	for _, material := range found {
		if material.IsActive() {
			materials[material.ID] = material
		}
	}

	return materials, nil
}

func (u *transactionUsecase) buildListItem(
	ctx context.Context,
	transaction domain.Transaction,
	procedures map[domain.ProcedureID]domain.Procedure,
	materials map[domain.MaterialID]domain.Material,
) (domain.TransactionListItem, error) {
	item := domain.TransactionListItem{
		EmployeeID: transaction.UserID,
		Timestamp:  transaction.CreatedAt,
	}

	if transaction.ProcedureID == nil {
		return item, nil
	}
	procedure, ok := procedures[*transaction.ProcedureID]
	if !ok {
		return item, nil
	}

	usages, err := u.procedureRepo.GetRequiredMaterials(ctx, procedure.ID)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionUsecase] GetListTransactions", "getRequiredMaterials", err)
		return item, err
	}

	recorded := make(map[domain.MaterialID]int64, len(transaction.Items))
	for _, transactionItem := range transaction.Items {
		recorded[transactionItem.MaterialID] = transactionItem.Quantity
	}

	var materialItems []domain.TransactionMaterialItem
	for _, usage := range usages {
		material, ok := materials[usage.MaterialID]
		if !ok {
			continue
		}
		// Fall back to the nominal required amount when the transaction
		// did not record a quantity for this material.
		quantity, ok := recorded[usage.MaterialID]
		if !ok {
			quantity = usage.RequiredAmount
		}
		materialItems = append(materialItems, domain.TransactionMaterialItem{
			ID:       material.ID,
			Name:     material.Name,
			Quantity: quantity,
		})
	}

	item.Procedure = &domain.TransactionProcedure{
		ID:    procedure.ID,
		Name:  procedure.Name,
		Items: materialItems,
	}
	return item, nil
}

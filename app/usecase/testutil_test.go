package usecase

import (
	"context"
	"database/sql"
	"time"

	"labstock-service/app/domain"

	"github.com/gofrs/uuid/v5"
)

type balanceKey struct {
	materialID   domain.MaterialID
	laboratoryID domain.LaboratoryID
}

// fakeStore is an in-memory implementation of every repository the use cases
// consume. WithTransaction snapshots the mutable state and restores it when
// the unit of work fails, mirroring a database rollback.
type fakeStore struct {
	materials     map[domain.MaterialID]domain.Material
	balances      map[balanceKey]domain.MaterialBalance
	procedures    map[domain.ProcedureID]domain.Procedure
	usages        map[domain.ProcedureID][]domain.ProcedureUsage
	labProcedures map[domain.LaboratoryID][]domain.LaboratoryProcedure
	transactions  map[domain.TransactionID]domain.Transaction

	balanceSaveErr     error
	balanceSaveFailsAt int // 1-based save call that fails, 0 = never
	balanceSaveCalls   int
	txnSaveErr         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		materials:     make(map[domain.MaterialID]domain.Material),
		balances:      make(map[balanceKey]domain.MaterialBalance),
		procedures:    make(map[domain.ProcedureID]domain.Procedure),
		usages:        make(map[domain.ProcedureID][]domain.ProcedureUsage),
		labProcedures: make(map[domain.LaboratoryID][]domain.LaboratoryProcedure),
		transactions:  make(map[domain.TransactionID]domain.Transaction),
	}
}

func (s *fakeStore) addMaterial(name string) domain.Material {
	now := time.Now().UTC()
	material := domain.Material{
		ID:        domain.MaterialID{UUID: uuid.Must(uuid.NewV4())},
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.materials[material.ID] = material
	return material
}

func (s *fakeStore) addProcedure(name string) domain.Procedure {
	now := time.Now().UTC()
	procedure := domain.Procedure{
		ID:        domain.ProcedureID{UUID: uuid.Must(uuid.NewV4())},
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.procedures[procedure.ID] = procedure
	return procedure
}

func (s *fakeStore) bindProcedure(labID domain.LaboratoryID, procID domain.ProcedureID, slot int) {
	s.labProcedures[labID] = append(s.labProcedures[labID], domain.LaboratoryProcedure{
		LaboratoryID: labID,
		ProcedureID:  procID,
		SlotID:       slot,
		CreatedAt:    time.Now().UTC(),
	})
}

func (s *fakeStore) addUsage(procID domain.ProcedureID, materialID domain.MaterialID, amount int64) {
	s.usages[procID] = append(s.usages[procID], domain.ProcedureUsage{
		ProcedureID:    procID,
		MaterialID:     materialID,
		RequiredAmount: amount,
	})
}

func (s *fakeStore) setBalance(materialID domain.MaterialID, labID domain.LaboratoryID, current, reserved int64) {
	s.balances[balanceKey{materialID, labID}] = domain.MaterialBalance{
		MaterialID:   materialID,
		LaboratoryID: labID,
		Current:      current,
		Reserved:     reserved,
		LastUpdated:  time.Now().UTC(),
	}
}

// MaterialRepository

func (s *fakeStore) GetByID(ctx context.Context, id domain.MaterialID) (domain.Material, error) {
	material, ok := s.materials[id]
	if !ok {
		return domain.Material{}, domain.ErrNotFound
	}
	return material, nil
}

func (s *fakeStore) GetByMultipleIDs(ctx context.Context, ids []domain.MaterialID) ([]domain.Material, error) {
	var materials []domain.Material
	for _, id := range ids {
		if material, ok := s.materials[id]; ok {
			materials = append(materials, material)
		}
	}
	return materials, nil
}

func (s *fakeStore) Exists(ctx context.Context, id domain.MaterialID) (bool, error) {
	_, ok := s.materials[id]
	return ok, nil
}

// MaterialBalanceRepository

func (s *fakeStore) Save(ctx context.Context, balance *domain.MaterialBalance, tx *sql.Tx) error {
	s.balanceSaveCalls++
	if s.balanceSaveErr != nil && (s.balanceSaveFailsAt == 0 || s.balanceSaveCalls == s.balanceSaveFailsAt) {
		return s.balanceSaveErr
	}
	s.balances[balanceKey{balance.MaterialID, balance.LaboratoryID}] = *balance
	return nil
}

func (s *fakeStore) GetByMaterialAndLaboratory(ctx context.Context, materialID domain.MaterialID, laboratoryID domain.LaboratoryID) (domain.MaterialBalance, error) {
	balance, ok := s.balances[balanceKey{materialID, laboratoryID}]
	if !ok {
		return domain.MaterialBalance{}, domain.ErrNotFound
	}
	return balance, nil
}

func (s *fakeStore) GetByLaboratory(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.MaterialBalance, error) {
	var balances []domain.MaterialBalance
	for key, balance := range s.balances {
		if key.laboratoryID == laboratoryID {
			balances = append(balances, balance)
		}
	}
	return balances, nil
}

func (s *fakeStore) GetMultipleByLaboratory(ctx context.Context, materialIDs []domain.MaterialID, laboratoryID domain.LaboratoryID) ([]domain.MaterialBalance, error) {
	var balances []domain.MaterialBalance
	for _, materialID := range materialIDs {
		if balance, ok := s.balances[balanceKey{materialID, laboratoryID}]; ok {
			balances = append(balances, balance)
		}
	}
	return balances, nil
}

func (s *fakeStore) LockForUpdate(ctx context.Context, materialID domain.MaterialID, laboratoryID domain.LaboratoryID, tx *sql.Tx) (domain.MaterialBalance, error) {
	return s.GetByMaterialAndLaboratory(ctx, materialID, laboratoryID)
}

func (s *fakeStore) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	balanceSnapshot := make(map[balanceKey]domain.MaterialBalance, len(s.balances))
	for key, balance := range s.balances {
		balanceSnapshot[key] = balance
	}
	transactionSnapshot := make(map[domain.TransactionID]domain.Transaction, len(s.transactions))
	for id, transaction := range s.transactions {
		transactionSnapshot[id] = transaction
	}

	if err := fn(ctx, nil); err != nil {
		s.balances = balanceSnapshot
		s.transactions = transactionSnapshot
		return err
	}
	return nil
}

// ProcedureRepository

func (s *fakeStore) GetProcedureByID(ctx context.Context, id domain.ProcedureID) (domain.Procedure, error) {
	procedure, ok := s.procedures[id]
	if !ok {
		return domain.Procedure{}, domain.ErrNotFound
	}
	return procedure, nil
}

func (s *fakeStore) GetRequiredMaterials(ctx context.Context, id domain.ProcedureID) ([]domain.ProcedureUsage, error) {
	return s.usages[id], nil
}

func (s *fakeStore) ProcedureExists(ctx context.Context, id domain.ProcedureID) (bool, error) {
	_, ok := s.procedures[id]
	return ok, nil
}

func (s *fakeStore) GetProceduresByLaboratory(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.Procedure, error) {
	var procedures []domain.Procedure
	for _, binding := range s.labProcedures[laboratoryID] {
		if procedure, ok := s.procedures[binding.ProcedureID]; ok {
			procedures = append(procedures, procedure)
		}
	}
	return procedures, nil
}

func (s *fakeStore) GetLaboratoryProcedures(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.LaboratoryProcedure, error) {
	return s.labProcedures[laboratoryID], nil
}

// TransactionRepository

func (s *fakeStore) SaveTransaction(ctx context.Context, transaction *domain.Transaction, tx *sql.Tx) error {
	if s.txnSaveErr != nil {
		return s.txnSaveErr
	}
	s.transactions[transaction.ID] = *transaction
	return nil
}

func (s *fakeStore) GetTransactionByID(ctx context.Context, id domain.TransactionID) (domain.Transaction, error) {
	transaction, ok := s.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return transaction, nil
}

func (s *fakeStore) TransactionExists(ctx context.Context, id domain.TransactionID) (bool, error) {
	_, ok := s.transactions[id]
	return ok, nil
}

func (s *fakeStore) GetWithFilters(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for _, transaction := range s.transactions {
		if filter.LaboratoryID != nil && transaction.LaboratoryID != *filter.LaboratoryID {
			continue
		}
		if filter.UserID != nil && transaction.UserID != *filter.UserID {
			continue
		}
		if filter.Type != nil && transaction.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && transaction.Status != *filter.Status {
			continue
		}
		if filter.StartDate != nil && transaction.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && transaction.CreatedAt.After(*filter.EndDate) {
			continue
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, transaction *domain.Transaction, tx *sql.Tx) error {
	s.transactions[transaction.ID] = *transaction
	return nil
}

// Method names collide across the repository interfaces, so the procedure
// and transaction views are thin adapters over the shared store.

type fakeProcedureRepo struct{ store *fakeStore }

func (r fakeProcedureRepo) GetByID(ctx context.Context, id domain.ProcedureID) (domain.Procedure, error) {
	return r.store.GetProcedureByID(ctx, id)
}

func (r fakeProcedureRepo) GetRequiredMaterials(ctx context.Context, id domain.ProcedureID) ([]domain.ProcedureUsage, error) {
	return r.store.GetRequiredMaterials(ctx, id)
}

func (r fakeProcedureRepo) Exists(ctx context.Context, id domain.ProcedureID) (bool, error) {
	return r.store.ProcedureExists(ctx, id)
}

func (r fakeProcedureRepo) GetByLaboratory(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.Procedure, error) {
	return r.store.GetProceduresByLaboratory(ctx, laboratoryID)
}

func (r fakeProcedureRepo) GetLaboratoryProcedures(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.LaboratoryProcedure, error) {
	return r.store.GetLaboratoryProcedures(ctx, laboratoryID)
}

type fakeTransactionRepo struct{ store *fakeStore }

func (r fakeTransactionRepo) Save(ctx context.Context, transaction *domain.Transaction, tx *sql.Tx) error {
	return r.store.SaveTransaction(ctx, transaction, tx)
}

func (r fakeTransactionRepo) GetByID(ctx context.Context, id domain.TransactionID) (domain.Transaction, error) {
	return r.store.GetTransactionByID(ctx, id)
}

func (r fakeTransactionRepo) Exists(ctx context.Context, id domain.TransactionID) (bool, error) {
	return r.store.TransactionExists(ctx, id)
}

func (r fakeTransactionRepo) GetWithFilters(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return r.store.GetWithFilters(ctx, filter)
}

func (r fakeTransactionRepo) UpdateStatus(ctx context.Context, transaction *domain.Transaction, tx *sql.Tx) error {
	return r.store.UpdateStatus(ctx, transaction, tx)
}

type fakeDeviceCommander struct {
	err      error
	commands []domain.DeviceCommand
}

func (d *fakeDeviceCommander) SendWithdrawCommand(ctx context.Context, deviceID string, slot int) error {
	if d.err != nil {
		return d.err
	}
	d.commands = append(d.commands, domain.DeviceCommand{DeviceID: deviceID, Action: "withdraw", Slot: slot})
	return nil
}

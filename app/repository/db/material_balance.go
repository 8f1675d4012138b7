package db

import (
	"context"
	"database/sql"
	"log/slog"

	"labstock-service/app/domain"
)

type materialBalanceRepository struct {
	conn *sql.DB
}

func NewMaterialBalanceRepository(db *sql.DB) domain.MaterialBalanceRepository {
	return &materialBalanceRepository{db}
}

func (r *materialBalanceRepository) Save(ctx context.Context, balance *domain.MaterialBalance, tx *sql.Tx) error {
	query := `INSERT INTO material_balances (material_id, laboratory_id, current_stock, reserved_stock, last_updated)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (material_id, laboratory_id)
	DO UPDATE SET current_stock = $3, reserved_stock = $4, last_updated = $5`

	_, err := tx.ExecContext(ctx, query, balance.MaterialID, balance.LaboratoryID,
		balance.Current, balance.Reserved, balance.LastUpdated)
	if err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] Save", "execContext", err)
		return err
	}

	return nil
}

func (r *materialBalanceRepository) GetByMaterialAndLaboratory(ctx context.Context, materialID domain.MaterialID, laboratoryID domain.LaboratoryID) (domain.MaterialBalance, error) {
	query := `SELECT material_id, laboratory_id, current_stock, reserved_stock, last_updated
	FROM material_balances WHERE material_id = $1 AND laboratory_id = $2`

	var balance domain.MaterialBalance
	err := r.conn.QueryRowContext(ctx, query, materialID, laboratoryID).Scan(&balance.MaterialID,
		&balance.LaboratoryID, &balance.Current, &balance.Reserved, &balance.LastUpdated)
	if err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] GetByMaterialAndLaboratory", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return balance, domain.ErrNotFound
		}
		return balance, err
	}

	return balance, nil
}

func (r *materialBalanceRepository) GetByLaboratory(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.MaterialBalance, error) {
	query := `SELECT material_id, laboratory_id, current_stock, reserved_stock, last_updated
	FROM material_balances WHERE laboratory_id = $1`

	rows, err := r.conn.QueryContext(ctx, query, laboratoryID)
	if err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] GetByLaboratory", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	return scanBalances(ctx, rows)
}

func (r *materialBalanceRepository) GetMultipleByLaboratory(ctx context.Context, materialIDs []domain.MaterialID, laboratoryID domain.LaboratoryID) ([]domain.MaterialBalance, error) {
	query := `SELECT material_id, laboratory_id, current_stock, reserved_stock, last_updated
	FROM material_balances WHERE material_id = ANY($1::uuid[]) AND laboratory_id = $2`

	idStrings := make([]string, 0, len(materialIDs))
	for _, id := range materialIDs {
		idStrings = append(idStrings, id.String())
	}

	rows, err := r.conn.QueryContext(ctx, query, idStrings, laboratoryID)
	if err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] GetMultipleByLaboratory", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	return scanBalances(ctx, rows)
}

func (r *materialBalanceRepository) LockForUpdate(ctx context.Context, materialID domain.MaterialID, laboratoryID domain.LaboratoryID, tx *sql.Tx) (domain.MaterialBalance, error) {
	query := `SELECT material_id, laboratory_id, current_stock, reserved_stock, last_updated
	FROM material_balances WHERE material_id = $1 AND laboratory_id = $2 FOR UPDATE`

	var balance domain.MaterialBalance
	err := tx.QueryRowContext(ctx, query, materialID, laboratoryID).Scan(&balance.MaterialID,
		&balance.LaboratoryID, &balance.Current, &balance.Reserved, &balance.LastUpdated)
	if err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] LockForUpdate", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return balance, domain.ErrNotFound
		}
		return balance, err
	}

	return balance, nil
}

func (r *materialBalanceRepository) WithTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] WithTransaction", "beginTx", err)
		return err
	}

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.ErrorContext(ctx, "[materialBalanceRepository] WithTransaction", "rollback", rollbackErr)
			return err
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] WithTransaction", "commit", err)
		return err
	}

	return nil
}

func scanBalances(ctx context.Context, rows *sql.Rows) ([]domain.MaterialBalance, error) {
	var balances []domain.MaterialBalance
	for rows.Next() {
		var balance domain.MaterialBalance
		if err := rows.Scan(&balance.MaterialID, &balance.LaboratoryID,
			&balance.Current, &balance.Reserved, &balance.LastUpdated); err != nil {
			slog.ErrorContext(ctx, "[materialBalanceRepository] scanBalances", "scan", err)
			return nil, err
		}
		balances = append(balances, balance)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[materialBalanceRepository] scanBalances", "rowError", err)
		return nil, err
	}

	return balances, nil
}

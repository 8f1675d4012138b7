package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"labstock-service/app/domain"
)

type transactionRepository struct {
	conn *sql.DB
}

func NewTransactionRepository(db *sql.DB) domain.TransactionRepository {
	return &transactionRepository{db}
}

func (r *transactionRepository) Save(ctx context.Context, transaction *domain.Transaction, tx *sql.Tx) error {
	query := `INSERT INTO transactions (id, type, status, laboratory_id, user_id, procedure_id, created_at, authorized_at, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var procedureID any
	if transaction.ProcedureID != nil {
		procedureID = *transaction.ProcedureID
	}

	_, err := tx.ExecContext(ctx, query, transaction.ID, transaction.Type, transaction.Status,
		transaction.LaboratoryID, transaction.UserID, procedureID,
		transaction.CreatedAt, transaction.AuthorizedAt, transaction.CompletedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] Save", "insertTransaction", err)
		return err
	}

	if len(transaction.Items) == 0 {
		return nil
	}

	valuePlaceholders := []string{}
	valueArgs := []interface{}{}
	for i, item := range transaction.Items {
		valuePlaceholders = append(valuePlaceholders, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		valueArgs = append(valueArgs, transaction.ID, item.MaterialID, item.Quantity)
	}

	itemsQuery := fmt.Sprintf(`INSERT INTO transaction_items (transaction_id, material_id, quantity) VALUES %s`,
		strings.Join(valuePlaceholders, ", "))

	_, err = tx.ExecContext(ctx, itemsQuery, valueArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] Save", "insertItems", err)
		return err
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id domain.TransactionID) (domain.Transaction, error) {
	query := `SELECT id, type, status, laboratory_id, user_id, procedure_id, created_at, authorized_at, completed_at
	FROM transactions WHERE id = $1`

	var transaction domain.Transaction
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&transaction.ID, &transaction.Type,
		&transaction.Status, &transaction.LaboratoryID, &transaction.UserID, &transaction.ProcedureID,
		&transaction.CreatedAt, &transaction.AuthorizedAt, &transaction.CompletedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return transaction, domain.ErrNotFound
		}
		return transaction, err
	}

	items, err := r.getItems(ctx, []domain.TransactionID{id})
	if err != nil {
		return transaction, err
	}
	transaction.Items = items[id]

	return transaction, nil
}

func (r *transactionRepository) Exists(ctx context.Context, id domain.TransactionID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`

	var exists bool
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] Exists", "queryRowContext", err)
		return false, err
	}

	return exists, nil
}

func (r *transactionRepository) GetWithFilters(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT id, type, status, laboratory_id, user_id, procedure_id, created_at, authorized_at, completed_at
	FROM transactions WHERE 1=1`

	args := []any{}
	placeholder := 1

	if filter.LaboratoryID != nil {
		query += fmt.Sprintf(" AND laboratory_id = $%d", placeholder)
		args = append(args, *filter.LaboratoryID)
		placeholder++
	}
	if filter.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", placeholder)
		args = append(args, *filter.UserID)
		placeholder++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", placeholder)
		args = append(args, *filter.Type)
		placeholder++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", placeholder)
		args = append(args, *filter.Status)
		placeholder++
	}
	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", placeholder)
		args = append(args, *filter.StartDate)
		placeholder++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", placeholder)
		args = append(args, *filter.EndDate)
		placeholder++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] GetWithFilters", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	var ids []domain.TransactionID
	for rows.Next() {
		var transaction domain.Transaction
		if err := rows.Scan(&transaction.ID, &transaction.Type, &transaction.Status,
			&transaction.LaboratoryID, &transaction.UserID, &transaction.ProcedureID,
			&transaction.CreatedAt, &transaction.AuthorizedAt, &transaction.CompletedAt); err != nil {
			slog.ErrorContext(ctx, "[transactionRepository] GetWithFilters", "scan", err)
			return nil, err
		}
		transactions = append(transactions, transaction)
		ids = append(ids, transaction.ID)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] GetWithFilters", "rowError", err)
		return nil, err
	}

	if len(transactions) == 0 {
		return nil, nil
	}

	itemsByTransaction, err := r.getItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		transactions[i].Items = itemsByTransaction[transactions[i].ID]
	}

	return transactions, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, transaction *domain.Transaction, tx *sql.Tx) error {
	query := `UPDATE transactions SET status = $1, completed_at = $2 WHERE id = $3`

	_, err := tx.ExecContext(ctx, query, transaction.Status, transaction.CompletedAt, transaction.ID)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] UpdateStatus", "execContext", err)
		return err
	}

	return nil
}

func (r *transactionRepository) getItems(ctx context.Context, ids []domain.TransactionID) (map[domain.TransactionID][]domain.TransactionItem, error) {
	query := `SELECT transaction_id, material_id, quantity
	FROM transaction_items WHERE transaction_id = ANY($1::uuid[])`

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	rows, err := r.conn.QueryContext(ctx, query, idStrings)
	if err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] getItems", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	items := make(map[domain.TransactionID][]domain.TransactionItem)
	for rows.Next() {
		var transactionID domain.TransactionID
		var item domain.TransactionItem
		if err := rows.Scan(&transactionID, &item.MaterialID, &item.Quantity); err != nil {
			slog.ErrorContext(ctx, "[transactionRepository] getItems", "scan", err)
			return nil, err
		}
		items[transactionID] = append(items[transactionID], item)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[transactionRepository] getItems", "rowError", err)
		return nil, err
	}

	return items, nil
}

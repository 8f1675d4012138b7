package db

import (
	"context"
	"database/sql"
	"log/slog"

	"labstock-service/app/domain"
)

type materialRepository struct {
	conn *sql.DB
}

func NewMaterialRepository(db *sql.DB) domain.MaterialRepository {
	return &materialRepository{db}
}

func (r *materialRepository) GetByID(ctx context.Context, id domain.MaterialID) (domain.Material, error) {
	query := `SELECT id, name, description, created_at, updated_at, deleted_at
	FROM materials WHERE id = $1`

	var material domain.Material
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&material.ID, &material.Name,
		&material.Description, &material.CreatedAt, &material.UpdatedAt, &material.DeletedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[materialRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return material, domain.ErrNotFound
		}
		return material, err
	}

	return material, nil
}

func (r *materialRepository) GetByMultipleIDs(ctx context.Context, ids []domain.MaterialID) ([]domain.Material, error) {
	query := `SELECT id, name, description, created_at, updated_at, deleted_at
	FROM materials WHERE id = ANY($1::uuid[])`

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	rows, err := r.conn.QueryContext(ctx, query, idStrings)
	if err != nil {
		slog.ErrorContext(ctx, "[materialRepository] GetByMultipleIDs", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var materials []domain.Material
	for rows.Next() {
		var material domain.Material
		if err := rows.Scan(&material.ID, &material.Name, &material.Description,
			&material.CreatedAt, &material.UpdatedAt, &material.DeletedAt); err != nil {
			slog.ErrorContext(ctx, "[materialRepository] GetByMultipleIDs", "scan", err)
			return nil, err
		}
		materials = append(materials, material)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[materialRepository] GetByMultipleIDs", "rowError", err)
		return nil, err
	}

	return materials, nil
}

func (r *materialRepository) Exists(ctx context.Context, id domain.MaterialID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM materials WHERE id = $1)`

	var exists bool
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		slog.ErrorContext(ctx, "[materialRepository] Exists", "queryRowContext", err)
		return false, err
	}

	return exists, nil
}

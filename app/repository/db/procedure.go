package db

import (
	"context"
	"database/sql"
	"log/slog"

	"labstock-service/app/domain"
)

type procedureRepository struct {
	conn *sql.DB
}

func NewProcedureRepository(db *sql.DB) domain.ProcedureRepository {
	return &procedureRepository{db}
}

func (r *procedureRepository) GetByID(ctx context.Context, id domain.ProcedureID) (domain.Procedure, error) {
	query := `SELECT id, name, description, created_at, updated_at, deleted_at
	FROM procedures WHERE id = $1`

	var procedure domain.Procedure
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&procedure.ID, &procedure.Name,
		&procedure.Description, &procedure.CreatedAt, &procedure.UpdatedAt, &procedure.DeletedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return procedure, domain.ErrNotFound
		}
		return procedure, err
	}

	return procedure, nil
}

func (r *procedureRepository) GetRequiredMaterials(ctx context.Context, id domain.ProcedureID) ([]domain.ProcedureUsage, error) {
	query := `SELECT procedure_id, material_id, required_amount
	FROM procedure_materials WHERE procedure_id = $1`

	rows, err := r.conn.QueryContext(ctx, query, id)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetRequiredMaterials", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var usages []domain.ProcedureUsage
	for rows.Next() {
		var usage domain.ProcedureUsage
		if err := rows.Scan(&usage.ProcedureID, &usage.MaterialID, &usage.RequiredAmount); err != nil {
			slog.ErrorContext(ctx, "[procedureRepository] GetRequiredMaterials", "scan", err)
			return nil, err
		}
		usages = append(usages, usage)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetRequiredMaterials", "rowError", err)
		return nil, err
	}

	return usages, nil
}

func (r *procedureRepository) Exists(ctx context.Context, id domain.ProcedureID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM procedures WHERE id = $1)`

	var exists bool
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] Exists", "queryRowContext", err)
		return false, err
	}

	return exists, nil
}

func (r *procedureRepository) GetByLaboratory(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.Procedure, error) {
	query := `SELECT p.id, p.name, p.description, p.created_at, p.updated_at, p.deleted_at
	FROM procedures p
	JOIN laboratory_procedures lp ON lp.procedure_id = p.id
	WHERE lp.laboratory_id = $1
	ORDER BY p.name`

	rows, err := r.conn.QueryContext(ctx, query, laboratoryID)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetByLaboratory", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var procedures []domain.Procedure
	for rows.Next() {
		var procedure domain.Procedure
		if err := rows.Scan(&procedure.ID, &procedure.Name, &procedure.Description,
			&procedure.CreatedAt, &procedure.UpdatedAt, &procedure.DeletedAt); err != nil {
			slog.ErrorContext(ctx, "[procedureRepository] GetByLaboratory", "scan", err)
			return nil, err
		}
		procedures = append(procedures, procedure)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetByLaboratory", "rowError", err)
		return nil, err
	}

	return procedures, nil
}

func (r *procedureRepository) GetLaboratoryProcedures(ctx context.Context, laboratoryID domain.LaboratoryID) ([]domain.LaboratoryProcedure, error) {
	query := `SELECT laboratory_id, procedure_id, slot_id, created_at
	FROM laboratory_procedures WHERE laboratory_id = $1`

	rows, err := r.conn.QueryContext(ctx, query, laboratoryID)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetLaboratoryProcedures", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var bindings []domain.LaboratoryProcedure
	for rows.Next() {
		var binding domain.LaboratoryProcedure
		if err := rows.Scan(&binding.LaboratoryID, &binding.ProcedureID,
			&binding.SlotID, &binding.CreatedAt); err != nil {
			slog.ErrorContext(ctx, "[procedureRepository] GetLaboratoryProcedures", "scan", err)
			return nil, err
		}
		bindings = append(bindings, binding)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[procedureRepository] GetLaboratoryProcedures", "rowError", err)
		return nil, err
	}

	return bindings, nil
}

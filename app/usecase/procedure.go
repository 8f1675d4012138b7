package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"labstock-service/app/domain"
	"labstock-service/config"
)

type procedureUsecase struct {
	procedureRepo domain.ProcedureRepository
	materialRepo  domain.MaterialRepository
	cfg           *config.Config
}

func NewProcedureUsecase(
	procedureRepo domain.ProcedureRepository,
	materialRepo domain.MaterialRepository,
	cfg *config.Config) domain.ProcedureService {
	return &procedureUsecase{procedureRepo, materialRepo, cfg}
}

func (u *procedureUsecase) GetByLaboratory(ctx context.Context, laboratoryID string) ([]domain.ProcedureResponse, error) {
	labID, err := domain.ParseLaboratoryID(laboratoryID)
	if err != nil {
		return nil, err
	}

	procedures, err := u.procedureRepo.GetByLaboratory(ctx, labID)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureUsecase] GetByLaboratory", "getProcedures", err)
		return nil, err
	}

	responses := make([]domain.ProcedureResponse, 0, len(procedures))
	for _, procedure := range procedures {
		if !procedure.IsActive() {
			continue
		}
		responses = append(responses, domain.ProcedureResponse{
			ID:          procedure.ID,
			Name:        procedure.Name,
			Description: procedure.Description,
			CreatedAt:   procedure.CreatedAt,
			UpdatedAt:   procedure.UpdatedAt,
		})
	}

	return responses, nil
}

func (u *procedureUsecase) GetProcedureMaterials(ctx context.Context, procedureID string) (domain.ProcedureMaterialsResponse, error) {
	var resp domain.ProcedureMaterialsResponse

	procID, err := domain.ParseProcedureID(procedureID)
	if err != nil {
		return resp, err
	}

	_, err = u.procedureRepo.GetByID(ctx, procID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return resp, fmt.Errorf("%w: procedure %s not found", domain.ErrValidation, procID)
		}
		slog.ErrorContext(ctx, "[procedureUsecase] GetProcedureMaterials", "getProcedure", err)
		return resp, err
	}

	usages, err := u.procedureRepo.GetRequiredMaterials(ctx, procID)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureUsecase] GetProcedureMaterials", "getRequiredMaterials", err)
		return resp, err
	}
	if len(usages) == 0 {
		return resp, fmt.Errorf("%w: no materials found for procedure %s", domain.ErrValidation, procID)
	}

	materialIDs := make([]domain.MaterialID, 0, len(usages))
	requiredAmounts := make(map[domain.MaterialID]int64, len(usages))
	for _, usage := range usages {
		materialIDs = append(materialIDs, usage.MaterialID)
		requiredAmounts[usage.MaterialID] = usage.RequiredAmount
	}

	materials, err := u.materialRepo.GetByMultipleIDs(ctx, materialIDs)
	if err != nil {
		slog.ErrorContext(ctx, "[procedureUsecase] GetProcedureMaterials", "getMaterials", err)
		return resp, err
	}

	items := make([]domain.ProcedureMaterialItem, 0, len(materials))
	for _, material := range materials {
		if !material.IsActive() {
			continue
		}
		items = append(items, domain.ProcedureMaterialItem{
			ID:             material.ID,
			Name:           material.Name,
			Description:    material.Description,
			RequiredAmount: requiredAmounts[material.ID],
		})
	}

	resp.Materials = items
	resp.TotalMaterials = len(items)
	return resp, nil
}

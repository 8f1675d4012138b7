package domain

import (
	"context"
	"time"
)

// Procedure is reference data for a clinical procedure, with the same
// soft-delete lifecycle as Material.
type Procedure struct {
	ID          ProcedureID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	DeletedAt   *time.Time  `json:"deleted_at,omitempty"`
}

func (p *Procedure) UpdateInfo(name, description string) {
	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now().UTC()
}

func (p *Procedure) SoftDelete() error {
	if p.DeletedAt != nil {
		return &AlreadyDeletedError{Resource: "procedure " + p.ID.String()}
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	return nil
}

func (p *Procedure) IsActive() bool {
	return p.DeletedAt == nil
}

// ProcedureUsage declares how much of a material one execution of a procedure
// consumes.
type ProcedureUsage struct {
	ProcedureID    ProcedureID `json:"procedure_id"`
	MaterialID     MaterialID  `json:"material_id"`
	RequiredAmount int64       `json:"required_amount"`
}

func (u ProcedureUsage) IsValidRequirement() bool {
	return u.RequiredAmount > 0
}

// LaboratoryProcedure binds a procedure to a physical dispenser slot within a
// laboratory. The existence of this record is what makes a procedure
// available in that laboratory.
type LaboratoryProcedure struct {
	LaboratoryID LaboratoryID `json:"laboratory_id"`
	ProcedureID  ProcedureID  `json:"procedure_id"`
	SlotID       int          `json:"slot_id"`
	CreatedAt    time.Time    `json:"created_at"`
}

type ProcedureResponse struct {
	ID          ProcedureID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ProcedureMaterialItem struct {
	ID             MaterialID `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	RequiredAmount int64      `json:"required_amount"`
}

type ProcedureMaterialsResponse struct {
	Materials      []ProcedureMaterialItem `json:"materials"`
	TotalMaterials int                     `json:"total_materials"`
}

type ProcedureRepository interface {
	GetByID(ctx context.Context, id ProcedureID) (Procedure, error)
	GetRequiredMaterials(ctx context.Context, id ProcedureID) ([]ProcedureUsage, error)
	Exists(ctx context.Context, id ProcedureID) (bool, error)
	GetByLaboratory(ctx context.Context, laboratoryID LaboratoryID) ([]Procedure, error)
	GetLaboratoryProcedures(ctx context.Context, laboratoryID LaboratoryID) ([]LaboratoryProcedure, error)
}

type ProcedureService interface {
	GetByLaboratory(ctx context.Context, laboratoryID string) ([]ProcedureResponse, error)
	GetProcedureMaterials(ctx context.Context, procedureID string) (ProcedureMaterialsResponse, error)
}

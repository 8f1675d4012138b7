package domain

import (
	"context"
	"time"
)

// Material is reference data for a consumable. Lifecycle state is carried by
// DeletedAt alone: a nil DeletedAt means the material is active.
type Material struct {
	ID          MaterialID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (m *Material) UpdateInfo(name, description string) {
	m.Name = name
	m.Description = description
	m.UpdatedAt = time.Now().UTC()
}

func (m *Material) SoftDelete() error {
	if m.DeletedAt != nil {
		return &AlreadyDeletedError{Resource: "material " + m.ID.String()}
	}
	now := time.Now().UTC()
	m.DeletedAt = &now
	m.UpdatedAt = now
	return nil
}

func (m *Material) Restore() error {
	if m.DeletedAt == nil {
		return &NotDeletedError{Resource: "material " + m.ID.String()}
	}
	m.DeletedAt = nil
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Material) IsActive() bool {
	return m.DeletedAt == nil
}

type MaterialRepository interface {
	GetByID(ctx context.Context, id MaterialID) (Material, error)
	GetByMultipleIDs(ctx context.Context, ids []MaterialID) ([]Material, error)
	Exists(ctx context.Context, id MaterialID) (bool, error)
}

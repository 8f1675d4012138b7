package domain

import (
	"github.com/gofrs/uuid/v5"
)

// Typed identifiers for each entity kind. Wrapping uuid.UUID keeps ids from
// different entities from being mixed up at compile time.

type MaterialID struct{ uuid.UUID }

type LaboratoryID struct{ uuid.UUID }

type ProcedureID struct{ uuid.UUID }

type TransactionID struct{ uuid.UUID }

type UserID struct{ uuid.UUID }

func ParseMaterialID(s string) (MaterialID, error) {
	id, err := parseResourceID("material_id", s)
	return MaterialID{id}, err
}

func ParseLaboratoryID(s string) (LaboratoryID, error) {
	id, err := parseResourceID("laboratory_id", s)
	return LaboratoryID{id}, err
}

func ParseProcedureID(s string) (ProcedureID, error) {
	id, err := parseResourceID("procedure_id", s)
	return ProcedureID{id}, err
}

func ParseTransactionID(s string) (TransactionID, error) {
	id, err := parseResourceID("transaction_id", s)
	return TransactionID{id}, err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseResourceID("user_id", s)
	return UserID{id}, err
}

func NewTransactionID() TransactionID {
	return TransactionID{uuid.Must(uuid.NewV4())}
}

func parseResourceID(field, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, &InvalidResourceIDError{Field: field, Value: s}
	}
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, &InvalidResourceIDError{Field: field, Value: s}
	}
	return id, nil
}

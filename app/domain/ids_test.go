package domain

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResourceIDs(t *testing.T) {
	valid := uuid.Must(uuid.NewV4()).String()

	materialID, err := ParseMaterialID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, materialID.String())

	labID, err := ParseLaboratoryID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, labID.String())

	procID, err := ParseProcedureID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, procID.String())

	userID, err := ParseUserID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, userID.String())
}

func TestParseResourceID_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "malformed", value: "not-a-uuid"},
		{name: "truncated", value: "123e4567-e89b-12d3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaterialID(tt.value)

			var invalidErr *InvalidResourceIDError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, "material_id", invalidErr.Field)
			assert.Equal(t, tt.value, invalidErr.Value)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestParseResourceID_FieldNames(t *testing.T) {
	var invalidErr *InvalidResourceIDError

	_, err := ParseLaboratoryID("x")
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "laboratory_id", invalidErr.Field)

	_, err = ParseProcedureID("x")
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "procedure_id", invalidErr.Field)

	_, err = ParseTransactionID("x")
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "transaction_id", invalidErr.Field)

	_, err = ParseUserID("x")
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "user_id", invalidErr.Field)
}

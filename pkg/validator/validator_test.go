package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type cropPayload struct {
	Name          string  `json:"name" validate:"required"`
	PlannedBudget float64 `json:"planned_budget" validate:"required,gt=0"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(cropPayload{})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)
	require.Equal(t, "name", failures[0].Field)
	require.Equal(t, "planned_budget", failures[1].Field)
}

func TestValidateStructPassesValidPayload(t *testing.T) {
	err := ValidateStruct(cropPayload{Name: "Maize", PlannedBudget: 10000})
	require.NoError(t, err)
}

func TestValidateStructRejectsNonPositiveBudget(t *testing.T) {
	err := ValidateStruct(cropPayload{Name: "Maize", PlannedBudget: -5})
	require.Error(t, err)
}

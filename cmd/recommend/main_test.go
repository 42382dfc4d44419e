package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDoctorCommand(t *testing.T) {
	t.Run("recommends the least busy cardiologist", func(t *testing.T) {
		out, err := run(t, "doctor", "--in-memory", "--onset", "Suddenly", "--area", "Chest", "--primary", "Pain")
		require.NoError(t, err)

		var rec entities.Recommendation
		require.NoError(t, json.Unmarshal([]byte(out), &rec))
		assert.Equal(t, entities.RecommendationOutcomeRecommended, rec.Outcome)
		require.NotNil(t, rec.Doctor)
		assert.Equal(t, int64(4), rec.Doctor.ID)
	})

	t.Run("unmatched selection has no doctor", func(t *testing.T) {
		out, err := run(t, "doctor", "--in-memory", "--onset", "???", "--area", "???", "--primary", "???")
		require.NoError(t, err)
		assert.Contains(t, out, `"no_department_match"`)
		assert.Contains(t, out, `"doctor": null`)
	})

	t.Run("duplicate symptoms fail", func(t *testing.T) {
		_, err := run(t, "doctor", "--in-memory", "--onset", "Suddenly", "--area", "Chest", "--primary", "Pain", "--secondary", "Pain")
		assert.Error(t, err)
	})
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "--onset", "Suddenly", "--area", "Chest", "--primary", "Pain")
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true}`, out)

	out, err = run(t, "validate", "--area", "Chest", "--primary", "Pain")
	assert.Error(t, err)
	assert.Contains(t, out, `"valid": false`)
}

func TestDepartmentsCommand(t *testing.T) {
	out, err := run(t, "departments")
	require.NoError(t, err)

	var departments []entities.Department
	require.NoError(t, json.Unmarshal([]byte(out), &departments))
	assert.NotEmpty(t, departments)
	assert.Equal(t, entities.DepartmentEmergency, departments[0].ID)
}

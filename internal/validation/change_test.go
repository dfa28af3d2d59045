package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/deltasync/internal/models"
)

func validChange() *models.SyncChange {
	return &models.SyncChange{
		ID:         "change-1",
		EntityType: "task",
		EntityID:   "t1",
		Operation:  models.OperationCreate,
		Version:    1,
		Timestamp:  1000,
		Payload:    map[string]string{"title": "hello"},
	}
}

func TestValidateChangeValid(t *testing.T) {
	res := ValidateChange(validChange())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateChangeNil(t *testing.T) {
	res := ValidateChange(nil)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
}

// TestValidateChangeEnumeratesAllViolations: перечисляются все нарушения,
// не только первое
func TestValidateChangeEnumeratesAllViolations(t *testing.T) {
	change := &models.SyncChange{
		ID:         "  ",
		EntityType: "",
		EntityID:   "\t",
		Operation:  models.Operation("upsert"),
		Version:    -1,
	}

	res := ValidateChange(change)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 5)
}

func TestValidateChangeSingleViolations(t *testing.T) {
	tests := []struct {
		mutate func(*models.SyncChange)
		name   string
	}{
		{func(c *models.SyncChange) { c.ID = "" }, "blank id"},
		{func(c *models.SyncChange) { c.EntityType = "   " }, "blank entity type"},
		{func(c *models.SyncChange) { c.EntityID = "" }, "blank entity id"},
		{func(c *models.SyncChange) { c.Version = -5 }, "negative version"},
		{func(c *models.SyncChange) { c.Operation = "drop" }, "unknown operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := validChange()
			tt.mutate(change)

			res := ValidateChange(change)
			assert.False(t, res.Valid)
			assert.Len(t, res.Errors, 1)
		})
	}
}

// TestValidateChangeIdempotent: повторная валидация дает тот же результат,
// вход не модифицируется
func TestValidateChangeIdempotent(t *testing.T) {
	change := validChange()
	change.Version = -1

	first := ValidateChange(change)
	second := ValidateChange(change)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(-1), change.Version)
}

// TestValidateChangeZeroVersion: version 0 валидна (bootstrap-изменение)
func TestValidateChangeZeroVersion(t *testing.T) {
	change := validChange()
	change.Version = 0

	res := ValidateChange(change)
	assert.True(t, res.Valid)
}

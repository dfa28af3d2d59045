package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/deltasync/internal/models"
)

func TestCalculateDisjointSets(t *testing.T) {
	local := []*models.SyncChange{change("l1", models.OperationCreate, 1, 100)}
	remote := []*models.SyncChange{change("r1", models.OperationCreate, 1, 100)}

	res := Calculate(0, 5, local, remote)
	require.Len(t, res.ToPush, 1)
	require.Len(t, res.ToPull, 1)
	assert.Equal(t, "l1", res.ToPush[0].EntityID)
	assert.Equal(t, "r1", res.ToPull[0].EntityID)
	assert.False(t, res.HasConflicts)
	assert.Empty(t, res.Conflicts)
}

func TestCalculateStrictVersionRules(t *testing.T) {
	// Удаленная версия строго больше: попадает в pull
	res := Calculate(0, 5,
		[]*models.SyncChange{change("t1", models.OperationCreate, 1, 100)},
		[]*models.SyncChange{change("t1", models.OperationUpdate, 2, 200)},
	)
	require.Len(t, res.ToPull, 1)
	assert.Empty(t, res.ToPush)

	// Равные версии не тянутся и не пушатся
	res = Calculate(0, 5,
		[]*models.SyncChange{change("t1", models.OperationCreate, 2, 100)},
		[]*models.SyncChange{change("t1", models.OperationUpdate, 2, 200)},
	)
	assert.Empty(t, res.ToPull)
	assert.Empty(t, res.ToPush)
}

// TestCalculateConflictOverlap: конфликтующая сущность может одновременно
// присутствовать в pull-set - вызывающий обязан исключить её
func TestCalculateConflictOverlap(t *testing.T) {
	res := Calculate(0, 5,
		[]*models.SyncChange{change("t1", models.OperationUpdate, 2, 100)},
		[]*models.SyncChange{change("t1", models.OperationUpdate, 3, 200)},
	)

	require.True(t, res.HasConflicts)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, models.ConflictUpdateUpdate, res.Conflicts[0].Type)
	require.Len(t, res.ToPull, 1)
	assert.Equal(t, "t1", res.ToPull[0].EntityID)
}

// TestCalculateAdditionalVersionCheck: пара вне таблицы детектора с двумя
// положительными неравными версиями дает version mismatch
func TestCalculateAdditionalVersionCheck(t *testing.T) {
	// create/update: fallback детектора уже находит version mismatch
	res := Calculate(0, 5,
		[]*models.SyncChange{change("t1", models.OperationCreate, 1, 100)},
		[]*models.SyncChange{change("t1", models.OperationUpdate, 2, 200)},
	)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, models.ConflictVersionMismatch, res.Conflicts[0].Type)
	assert.Equal(t, models.SeverityLow, res.Conflicts[0].Severity)
}

// TestCalculateZeroVersionConflictsViaDetectorOnly: при version=0 с одной
// стороны конфликт дает только fallback детектора, не проверка дельты
func TestCalculateZeroVersionConflictsViaDetectorOnly(t *testing.T) {
	res := Calculate(0, 5,
		[]*models.SyncChange{change("t1", models.OperationCreate, 0, 100)},
		[]*models.SyncChange{change("t1", models.OperationUpdate, 3, 200)},
	)
	// Детектор: пара create/update не в таблице, версии 0 != 3 -> конфликт
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, models.ConflictVersionMismatch, res.Conflicts[0].Type)

	// Равные версии, пара вне таблицы: конфликта нет вовсе
	res = Calculate(0, 5,
		[]*models.SyncChange{change("t1", models.OperationCreate, 2, 100)},
		[]*models.SyncChange{change("t1", models.OperationUpdate, 2, 200)},
	)
	assert.Empty(t, res.Conflicts)
	assert.False(t, res.HasConflicts)
}

func TestCalculateEmptyInputs(t *testing.T) {
	res := Calculate(0, 0, nil, nil)
	assert.Empty(t, res.ToPull)
	assert.Empty(t, res.ToPush)
	assert.Empty(t, res.Conflicts)
	assert.False(t, res.HasConflicts)
}

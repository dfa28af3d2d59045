// Package resolve применяет стратегии разрешения к обнаруженным конфликтам.
// Как и delta, это чистые stateless функции.
package resolve

import (
	"errors"
	"sort"

	"github.com/iudanet/deltasync/internal/models"
)

// ErrUnknownStrategy возвращается для нераспознанной стратегии
var ErrUnknownStrategy = errors.New("unknown resolution strategy")

// ResolvedChange - результат применения стратегии к конфликту.
// При WasAutomatic=false (стратегия MANUAL) Change - только placeholder:
// вызывающий не должен применять его, это сигнал "нужен человек".
type ResolvedChange struct {
	Change       *models.SyncChange        `json:"change"`
	MergedFields []string                  `json:"merged_fields,omitempty"` // MergedFields ключи итогового payload для стратегии MERGE
	Strategy     models.ResolutionStrategy `json:"strategy"`
	WasAutomatic bool                      `json:"was_automatic"`
}

// Resolve применяет стратегию к конфликту.
//
// KEEP_LOCAL / KEEP_REMOTE берут соответствующую сторону целиком.
// LAST_WRITE_WINS выбирает более поздний timestamp, при равенстве - локальное.
// MERGE накладывает локальный payload поверх удаленного (локальные значения
// побеждают при коллизии ключей), version = max(local, remote) + 1.
// MANUAL возвращает локальное изменение как placeholder с WasAutomatic=false.
func Resolve(conflict *models.SyncConflict, strategy models.ResolutionStrategy) (*ResolvedChange, error) {
	switch strategy {
	case models.StrategyKeepLocal:
		return &ResolvedChange{
			Change:       conflict.Local.Clone(),
			Strategy:     strategy,
			WasAutomatic: true,
		}, nil

	case models.StrategyKeepRemote:
		return &ResolvedChange{
			Change:       conflict.Remote.Clone(),
			Strategy:     strategy,
			WasAutomatic: true,
		}, nil

	case models.StrategyLastWriteWins:
		winner := conflict.Remote.Clone()
		if conflict.Local.Timestamp >= conflict.Remote.Timestamp {
			winner = conflict.Local.Clone()
		}
		return &ResolvedChange{
			Change:       winner,
			Strategy:     strategy,
			WasAutomatic: true,
		}, nil

	case models.StrategyMerge:
		return mergePayloads(conflict), nil

	case models.StrategyManual:
		return &ResolvedChange{
			Change:       conflict.Local.Clone(),
			Strategy:     strategy,
			WasAutomatic: false,
		}, nil
	}

	return nil, ErrUnknownStrategy
}

// mergePayloads строит объединенное изменение для стратегии MERGE
func mergePayloads(conflict *models.SyncConflict) *ResolvedChange {
	merged := conflict.Local.Clone()

	payload := make(map[string]string, len(conflict.Remote.Payload)+len(conflict.Local.Payload))
	for k, v := range conflict.Remote.Payload {
		payload[k] = v
	}
	// Локальные значения поверх удаленных
	for k, v := range conflict.Local.Payload {
		payload[k] = v
	}
	merged.Payload = payload

	merged.Version = conflict.Local.Version
	if conflict.Remote.Version > merged.Version {
		merged.Version = conflict.Remote.Version
	}
	merged.Version++

	if conflict.Remote.Timestamp > merged.Timestamp {
		merged.Timestamp = conflict.Remote.Timestamp
	}

	fields := make([]string, 0, len(payload))
	for k := range payload {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	return &ResolvedChange{
		Change:       merged,
		MergedFields: fields,
		Strategy:     models.StrategyMerge,
		WasAutomatic: true,
	}
}

// SuggestStrategy выбирает стратегию для конфликта по политике.
//
// Порядок: (1) переопределение по entity type возвращается как есть,
// независимо от severity; (2) иначе severity-дефолты:
// LOW -> LAST_WRITE_WINS, HIGH -> MANUAL, MEDIUM -> дефолт политики.
func SuggestStrategy(conflict *models.SyncConflict, policy models.ConflictPolicy) models.ResolutionStrategy {
	if override, ok := policy.EntityOverrides[conflict.EntityType]; ok {
		return override
	}

	switch conflict.Severity {
	case models.SeverityLow:
		return models.StrategyLastWriteWins
	case models.SeverityHigh:
		return models.StrategyManual
	}
	return policy.DefaultStrategy
}

// Prioritize возвращает конфликты, отсортированные по убыванию severity
// (HIGH, MEDIUM, LOW). Сортировка стабильна, вход не модифицируется.
func Prioritize(conflicts []*models.SyncConflict) []*models.SyncConflict {
	out := make([]*models.SyncConflict, len(conflicts))
	copy(out, conflicts)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})

	return out
}

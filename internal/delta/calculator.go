package delta

import (
	"time"

	"github.com/iudanet/deltasync/internal/models"
)

// Result - результат разбиения локальных и удаленных изменений на
// pull-set, push-set и conflict-set.
//
// ToPull и ToPush могут содержать сущность, которая также попала в
// Conflicts: вызывающий обязан исключить или разрешить конфликтующие
// сущности перед применением pull/push наборов.
type Result struct {
	ToPull       []*models.SyncChange
	ToPush       []*models.SyncChange
	Conflicts    []*models.SyncConflict
	HasConflicts bool
}

// Calculate разбивает наборы изменений на push/pull/conflict.
//
// Оба списка индексируются по entity id. Удаленное изменение попадает в
// ToPull, если локального аналога нет или его версия строго меньше;
// симметрично для ToPush. Для каждой пары локальное/удаленное по одной
// сущности запускается DetectConflict; дополнительно, даже когда детектор
// конфликта не нашел, неравенство двух положительных версий
// классифицируется как version_mismatch - это отдельная проверка фазы
// дельты, страховка на случай промаха детектора, не следствие его
// fallback-правила.
func Calculate(localVersion, serverVersion int64, localChanges, remoteChanges []*models.SyncChange) *Result {
	_ = localVersion
	_ = serverVersion

	localByEntity := indexByEntity(localChanges)
	remoteByEntity := indexByEntity(remoteChanges)

	res := &Result{}

	// Удаленные изменения без локального аналога или с более новой версией
	for _, remote := range remoteChanges {
		local, ok := localByEntity[remote.EntityID]
		if !ok || remote.Version > local.Version {
			res.ToPull = append(res.ToPull, remote)
		}
	}

	// Симметрично для локальных изменений
	for _, local := range localChanges {
		remote, ok := remoteByEntity[local.EntityID]
		if !ok || local.Version > remote.Version {
			res.ToPush = append(res.ToPush, local)
		}
	}

	// Проход по конфликтам: для каждой пары по одной сущности
	now := time.Now()
	for _, local := range localChanges {
		remote, ok := remoteByEntity[local.EntityID]
		if !ok {
			continue
		}

		if conflictType, conflicted := DetectConflict(local, remote); conflicted {
			res.Conflicts = append(res.Conflicts, models.NewConflict(local, remote, conflictType, now))
			continue
		}

		// Дополнительная проверка версий фазы дельты: обе версии
		// положительны и не равны. Поведение отличается от fallback
		// детектора, когда одна из сторон имеет version=0.
		if local.Version > 0 && remote.Version > 0 && local.Version != remote.Version {
			res.Conflicts = append(res.Conflicts, models.NewConflict(local, remote, models.ConflictVersionMismatch, now))
		}
	}

	res.HasConflicts = len(res.Conflicts) > 0
	return res
}

// indexByEntity индексирует изменения по entity id.
// Каждый набор содержит не более одного изменения на сущность.
func indexByEntity(changes []*models.SyncChange) map[string]*models.SyncChange {
	index := make(map[string]*models.SyncChange, len(changes))
	for _, change := range changes {
		index[change.EntityID] = change
	}
	return index
}

package delta

import (
	"time"

	"github.com/iudanet/deltasync/internal/models"
)

// MergeResult - результат объединения двух наборов изменений
type MergeResult struct {
	Merged    []*models.SyncChange
	Conflicts []*models.SyncConflict
	// AutoResolved - количество конфликтов LOW severity, разрешенных
	// автоматически правилом last-write-wins
	AutoResolved int
	// RequiresManual - количество конфликтов HIGH severity
	RequiresManual int
}

// Merge объединяет локальный и удаленный наборы изменений.
//
// Сущности, присутствующие только на одной стороне, проходят в Merged
// без изменений. Для пар запускается DetectConflict:
//   - конфликта нет: побеждает более поздний timestamp, при равенстве - локальное;
//   - severity LOW: авторазрешение тем же правилом;
//   - severity MEDIUM/HIGH: конфликт попадает в Conflicts, ни одна из
//     сторон не включается в Merged.
func Merge(localChanges, remoteChanges []*models.SyncChange) *MergeResult {
	localByEntity := indexByEntity(localChanges)
	remoteByEntity := indexByEntity(remoteChanges)

	res := &MergeResult{}
	now := time.Now()

	for _, local := range localChanges {
		remote, ok := remoteByEntity[local.EntityID]
		if !ok {
			res.Merged = append(res.Merged, local)
			continue
		}

		conflictType, conflicted := DetectConflict(local, remote)
		if !conflicted {
			res.Merged = append(res.Merged, laterOf(local, remote))
			continue
		}

		if conflictType.Severity() == models.SeverityLow {
			res.Merged = append(res.Merged, laterOf(local, remote))
			res.AutoResolved++
			continue
		}

		conflict := models.NewConflict(local, remote, conflictType, now)
		res.Conflicts = append(res.Conflicts, conflict)
		if conflict.Severity == models.SeverityHigh {
			res.RequiresManual++
		}
	}

	for _, remote := range remoteChanges {
		if _, ok := localByEntity[remote.EntityID]; !ok {
			res.Merged = append(res.Merged, remote)
		}
	}

	return res
}

// laterOf выбирает изменение с более поздним timestamp.
// При равных timestamp детерминированно побеждает локальное.
func laterOf(local, remote *models.SyncChange) *models.SyncChange {
	if local.Timestamp >= remote.Timestamp {
		return local
	}
	return remote
}

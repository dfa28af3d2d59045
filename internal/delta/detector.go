// Package delta содержит чистые функции sync-ядра: детектор конфликтов,
// вычисление дельты и merge двух наборов изменений. Функции stateless и
// безопасны для конкурентного вызова.
package delta

import "github.com/iudanet/deltasync/internal/models"

// DetectConflict классифицирует конфликт между локальным и удаленным
// изменением. Возвращает (тип, true), если конфликт есть.
//
// Конфликт возможен только для одной и той же сущности. Порядок
// классификации фиксирован, побеждает первое совпадение:
//
//  1. UPDATE/UPDATE -> update_update
//  2. UPDATE/DELETE -> update_delete
//  3. DELETE/UPDATE -> delete_update
//  4. CREATE/CREATE -> create_create
//  5. версии не равны -> version_mismatch
//
// Функция вызывается и при вычислении дельты, и при merge -
// семантика в обоих местах обязана быть идентичной.
func DetectConflict(local, remote *models.SyncChange) (models.ConflictType, bool) {
	if local == nil || remote == nil {
		return "", false
	}
	if local.EntityID != remote.EntityID {
		return "", false
	}

	switch {
	case local.Operation == models.OperationUpdate && remote.Operation == models.OperationUpdate:
		return models.ConflictUpdateUpdate, true
	case local.Operation == models.OperationUpdate && remote.Operation == models.OperationDelete:
		return models.ConflictUpdateDelete, true
	case local.Operation == models.OperationDelete && remote.Operation == models.OperationUpdate:
		return models.ConflictDeleteUpdate, true
	case local.Operation == models.OperationCreate && remote.Operation == models.OperationCreate:
		return models.ConflictCreateCreate, true
	}

	if local.Version != remote.Version {
		return models.ConflictVersionMismatch, true
	}

	return "", false
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/delta"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/resolve"
)

// buildConflict классифицирует пару изменений и строит конфликт.
// Пара, дошедшая сюда, конфликтна по определению (сервер ответил 409),
// поэтому неклассифицируемое расхождение считается version mismatch.
func buildConflict(local, remote *models.SyncChange) *models.SyncConflict {
	conflictType, ok := delta.DetectConflict(local, remote)
	if !ok {
		conflictType = models.ConflictVersionMismatch
	}
	return models.NewConflict(local, remote, conflictType, time.Now())
}

// parkConflict сохраняет конфликт, снимает породившую его операцию с очереди
// и пытается разрешить его автоматически по политике.
// Судьба локального изменения теперь решается разрешением конфликта,
// а не повторной отправкой.
func (o *Orchestrator) parkConflict(ctx context.Context, conflict *models.SyncConflict, result *Result) error {
	if err := o.conflicts.SaveConflict(ctx, conflict); err != nil {
		return fmt.Errorf("failed to save conflict: %w", err)
	}

	if err := o.queue.DeleteOperation(ctx, conflict.Local.ID); err != nil &&
		!errors.Is(err, storage.ErrOperationNotFound) {
		return fmt.Errorf("failed to remove conflicted operation: %w", err)
	}

	result.ConflictsFound++
	o.logger.Warn("sync conflict detected",
		"conflict_id", conflict.ID,
		"entity_type", conflict.EntityType,
		"entity_id", conflict.EntityID,
		"type", conflict.Type,
		"severity", conflict.Severity.String())

	o.tryAutoResolve(ctx, conflict, result)
	return nil
}

// tryAutoResolve применяет политику к конфликту. MANUAL оставляет конфликт
// в хранилище до явного ResolveConflict; ошибка авторазрешения не валит
// цикл - конфликт просто остается неразрешенным.
func (o *Orchestrator) tryAutoResolve(ctx context.Context, conflict *models.SyncConflict, result *Result) {
	strategy := resolve.SuggestStrategy(conflict, o.policy)
	if strategy == models.StrategyManual {
		o.logger.Info("conflict parked for manual resolution", "conflict_id", conflict.ID)
		return
	}

	resolved, err := resolve.Resolve(conflict, strategy)
	if err != nil || !resolved.WasAutomatic {
		o.logger.Warn("auto resolution failed", "conflict_id", conflict.ID, "error", err)
		return
	}

	if err := o.applyResolved(ctx, conflict, resolved); err != nil {
		o.logger.Warn("failed to apply auto resolution", "conflict_id", conflict.ID, "error", err)
		return
	}

	result.AutoResolved++
	o.logger.Info("conflict auto-resolved",
		"conflict_id", conflict.ID,
		"strategy", string(strategy))
}

// applyResolved применяет победившее изменение: обновляет кеш, при победе
// локальной стороны ставит изменение в очередь на отправку и помечает
// конфликт разрешенным (запись остается для аудита).
func (o *Orchestrator) applyResolved(ctx context.Context, conflict *models.SyncConflict, resolved *resolve.ResolvedChange) error {
	winner := resolved.Change

	if err := o.applyToCache(ctx, winner); err != nil {
		return err
	}

	// Победа серверной стороны не требует отправки
	if winner.ID != conflict.Remote.ID {
		// Сервер примет изменение только с версией выше своей текущей
		if winner.Version <= conflict.Remote.Version {
			winner.Version = conflict.Remote.Version + 1
		}
		op := &models.PendingOperation{
			Payload:        winner.Payload,
			ID:             winner.ID,
			EntityType:     winner.EntityType,
			EntityID:       winner.EntityID,
			Operation:      winner.Operation,
			IdempotencyKey: uuid.NewString(),
			Version:        winner.Version,
			Timestamp:      winner.Timestamp,
			CreatedAt:      time.Now().Unix(),
		}
		if err := o.queue.Enqueue(ctx, op); err != nil {
			return fmt.Errorf("failed to enqueue resolved change: %w", err)
		}
	}

	if err := o.conflicts.MarkResolved(ctx, conflict.ID, resolved.Strategy, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to mark conflict resolved: %w", err)
	}

	return nil
}

// ListConflicts возвращает неразрешенные конфликты, отсортированные
// по убыванию severity
func (o *Orchestrator) ListConflicts(ctx context.Context) ([]*models.SyncConflict, error) {
	conflicts, err := o.conflicts.GetUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return resolve.Prioritize(conflicts), nil
}

// ResolveConflict явно разрешает отложенный конфликт выбранной стратегией.
// MANUAL не принимается: это не разрешение, а откладывание.
func (o *Orchestrator) ResolveConflict(ctx context.Context, id string, strategy models.ResolutionStrategy) error {
	if strategy == models.StrategyManual {
		return ErrManualStrategy
	}
	if !strategy.Valid() {
		return resolve.ErrUnknownStrategy
	}

	conflict, err := o.conflicts.GetConflict(ctx, id)
	if err != nil {
		return err
	}
	if conflict.Resolved {
		return ErrConflictResolved
	}

	resolved, err := resolve.Resolve(conflict, strategy)
	if err != nil {
		return err
	}
	if err := o.applyResolved(ctx, conflict, resolved); err != nil {
		return err
	}

	o.logger.Info("conflict resolved",
		"conflict_id", id,
		"strategy", string(strategy))

	// Если победила локальная сторона, изменение уже в очереди -
	// подталкиваем отправку
	o.TriggerSync()
	return nil
}

// Package sync содержит оркестратор синхронизации: конечный автомат
// Idle -> Syncing -> {Success | Error} -> Idle поверх durable-очереди
// локальных мутаций и фида изменений сервера.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	httpClient "github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/delta"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/validation"
	"github.com/iudanet/deltasync/pkg/api"
)

// Ошибки оркестратора
var (
	// ErrSyncInProgress возвращается при попытке запустить синхронизацию,
	// пока предыдущая не завершилась. Запросы не ставятся в очередь.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrOffline возвращается при запуске синхронизации без связи с сервером
	ErrOffline = errors.New("client is offline")

	// ErrNotAuthenticated возвращается когда нет сохраненной сессии
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrManualStrategy возвращается при попытке разрешить конфликт
	// стратегией MANUAL: manual - не разрешение, а откладывание
	ErrManualStrategy = errors.New("manual strategy does not resolve a conflict")

	// ErrConflictResolved возвращается при повторном разрешении конфликта
	ErrConflictResolved = errors.New("conflict is already resolved")
)

// Connectivity - наблюдаемое состояние связности
type Connectivity interface {
	IsOnline() bool
	Subscribe() <-chan bool
}

// Config задает параметры оркестратора
type Config struct {
	// EntityTypes - типы сущностей, участвующие в pull
	EntityTypes []string
	// BatchSize ограничивает количество операций за один push-проход
	BatchSize int
	// MaxRetries - потолок повторов отправки одной операции.
	// Исчерпавшая его операция бросается на месте и логируется.
	MaxRetries int
	// PullLimit ограничивает размер одной страницы фида
	PullLimit int
	// SyncInterval - период фоновой синхронизации
	SyncInterval time.Duration
	// ReconnectDebounce - задержка перед синхронизацией после
	// восстановления связи
	ReconnectDebounce time.Duration
	// RetryDelay - рекомендованная пауза после неуспешного цикла
	RetryDelay time.Duration
}

// withDefaults заполняет незаданные параметры
func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.PullLimit <= 0 {
		c.PullLimit = 100
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = 5 * time.Minute
	}
	if c.ReconnectDebounce <= 0 {
		c.ReconnectDebounce = 2 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 30 * time.Second
	}
	return c
}

// Result содержит итоги одного цикла синхронизации
type Result struct {
	Pushed         int // отправлено на сервер
	Pulled         int // применено из фида сервера
	ConflictsFound int // обнаружено конфликтов
	AutoResolved   int // разрешено автоматически по политике
	Abandoned      int // операций брошено после исчерпания повторов
}

// Orchestrator координирует push/pull синхронизацию.
// Единственный экземпляр на процесс; одновременно выполняется
// не более одного цикла.
type Orchestrator struct {
	apiClient  httpClient.ClientAPI
	queue      storage.QueueStorage
	conflicts  storage.ConflictStorage
	versions   storage.VersionStorage
	cache      storage.CacheStorage
	auth       storage.AuthStorage
	netmon     Connectivity
	logger     *slog.Logger
	triggerC   chan struct{}
	statusSubs []chan models.SyncStatus
	policy     models.ConflictPolicy
	cfg        Config
	status     models.SyncStatus
	statusMu   sync.Mutex
	syncing    atomic.Bool
}

// NewOrchestrator создает оркестратор синхронизации
func NewOrchestrator(
	apiClient httpClient.ClientAPI,
	queue storage.QueueStorage,
	conflicts storage.ConflictStorage,
	versions storage.VersionStorage,
	cache storage.CacheStorage,
	auth storage.AuthStorage,
	netmon Connectivity,
	policy models.ConflictPolicy,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		apiClient: apiClient,
		queue:     queue,
		conflicts: conflicts,
		versions:  versions,
		cache:     cache,
		auth:      auth,
		netmon:    netmon,
		policy:    policy,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		triggerC:  make(chan struct{}, 1),
	}
}

// Status возвращает текущее состояние синхронизации
func (o *Orchestrator) Status() models.SyncStatus {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	return o.status
}

// SubscribeStatus возвращает канал, получающий состояние при каждой смене.
// Уведомление, которое некому принять, отбрасывается.
func (o *Orchestrator) SubscribeStatus() <-chan models.SyncStatus {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()

	ch := make(chan models.SyncStatus, 4)
	o.statusSubs = append(o.statusSubs, ch)
	return ch
}

// transition изменяет наблюдаемое состояние и уведомляет подписчиков
func (o *Orchestrator) transition(mutate func(s *models.SyncStatus)) {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()

	mutate(&o.status)
	for _, ch := range o.statusSubs {
		select {
		case ch <- o.status:
		default:
		}
	}
}

// Sync выполняет один полный цикл: push локальной очереди, затем pull
// фида сервера по каждому типу сущностей. Параллельный вызов отклоняется
// с ErrSyncInProgress, запрос без связи - с ErrOffline.
func (o *Orchestrator) Sync(ctx context.Context) (*Result, error) {
	if !o.netmon.IsOnline() {
		return nil, ErrOffline
	}

	authData, err := o.auth.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load auth data: %w", err)
	}

	if !o.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer o.syncing.Store(false)

	o.logger.Info("starting sync cycle")
	o.transition(func(s *models.SyncStatus) {
		s.State = models.StateSyncing
		s.LastError = ""
		s.RetryAfter = 0
	})

	result := &Result{}

	if err := o.pushPhase(ctx, authData.AccessToken, result); err != nil {
		o.fail(err)
		return nil, err
	}
	if err := o.pullPhase(ctx, authData.AccessToken, result); err != nil {
		o.fail(err)
		return nil, err
	}

	o.logger.Info("sync cycle completed",
		"pushed", result.Pushed,
		"pulled", result.Pulled,
		"conflicts", result.ConflictsFound,
		"auto_resolved", result.AutoResolved)

	now := time.Now().Unix()
	o.transition(func(s *models.SyncStatus) {
		s.State = models.StateSuccess
		s.ItemsSynced = result.Pushed + result.Pulled
		s.LastSyncAt = now
	})
	// Success - терминальное только для цикла, машина сразу готова к следующему
	o.transition(func(s *models.SyncStatus) {
		s.State = models.StateIdle
	})

	return result, nil
}

// fail переводит машину в Error и планирует возврат в Idle после паузы
func (o *Orchestrator) fail(err error) {
	o.logger.Error("sync cycle failed", "error", err)
	o.transition(func(s *models.SyncStatus) {
		s.State = models.StateError
		s.LastError = err.Error()
		s.RetryAfter = o.cfg.RetryDelay
	})

	time.AfterFunc(o.cfg.RetryDelay, func() {
		o.transition(func(s *models.SyncStatus) {
			if s.State == models.StateError {
				s.State = models.StateIdle
				s.RetryAfter = 0
			}
		})
	})
}

// pushPhase отправляет очередь в порядке создания.
// Невалидные записи отбрасываются, отказ по версии превращается в конфликт,
// транзиентная ошибка помечает запись и прерывает проход - порядок FIFO
// внутри сущности не нарушается.
func (o *Orchestrator) pushPhase(ctx context.Context, token string, result *Result) error {
	ops, err := o.queue.GetPending(ctx, o.cfg.MaxRetries, o.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to read pending queue: %w", err)
	}

	for _, op := range ops {
		change := op.ToChange()

		// Невалидная запись не станет валидной при повторе
		if vr := validation.ValidateChange(change); !vr.Valid {
			o.logger.Warn("dropping invalid queued operation",
				"operation_id", op.ID, "errors", vr.Errors)
			if err := o.queue.DeleteOperation(ctx, op.ID); err != nil {
				return fmt.Errorf("failed to drop invalid operation: %w", err)
			}
			continue
		}

		req := api.PushRequest{Change: changeToRecord(change, op.IdempotencyKey)}
		resp, err := o.apiClient.PushChange(ctx, token, req)
		if err != nil {
			var conflictErr *httpClient.ConflictError
			if errors.As(err, &conflictErr) {
				remote := recordToChange(conflictErr.Current)
				if parkErr := o.parkConflict(ctx, buildConflict(change, remote), result); parkErr != nil {
					return parkErr
				}
				continue
			}

			if markErr := o.queue.MarkFailed(ctx, op.ID, err.Error()); markErr != nil {
				return fmt.Errorf("failed to mark operation failed: %w", markErr)
			}
			if op.RetryCount+1 >= o.cfg.MaxRetries {
				o.logger.Error("operation abandoned after retry budget",
					"operation_id", op.ID,
					"entity_id", op.EntityID,
					"retries", op.RetryCount+1,
					"last_error", err.Error())
				result.Abandoned++
				continue
			}
			return fmt.Errorf("push failed for operation %s: %w", op.ID, err)
		}

		if resp.Duplicate {
			o.logger.Debug("push deduplicated by server", "operation_id", op.ID)
		}
		if err := o.queue.DeleteOperation(ctx, op.ID); err != nil {
			return fmt.Errorf("failed to delete acknowledged operation: %w", err)
		}
		result.Pushed++
	}

	return nil
}

// pullPhase вычитывает фид сервера по каждому типу сущностей от сохраненного
// watermark, прогоняет страницу через delta-калькулятор против еще не
// отправленных локальных изменений и применяет бесконфликтную часть к кешу.
// Watermark продвигается только после успешного применения страницы.
func (o *Orchestrator) pullPhase(ctx context.Context, token string, result *Result) error {
	for _, entityType := range o.cfg.EntityTypes {
		for {
			since, err := o.versions.GetVersion(ctx, entityType)
			if err != nil {
				return fmt.Errorf("failed to read watermark for %s: %w", entityType, err)
			}

			resp, err := o.apiClient.PullChanges(ctx, token, entityType, since, o.cfg.PullLimit)
			if err != nil {
				return fmt.Errorf("pull failed for %s: %w", entityType, err)
			}
			if len(resp.Records) == 0 {
				break
			}

			remoteChanges := make([]*models.SyncChange, 0, len(resp.Records))
			for _, record := range resp.Records {
				remoteChanges = append(remoteChanges, recordToChange(record))
			}

			localChanges, err := o.pendingChanges(ctx, entityType)
			if err != nil {
				return err
			}

			deltaResult := delta.Calculate(since, resp.NewVersion, localChanges, remoteChanges)

			conflicted := make(map[string]bool, len(deltaResult.Conflicts))
			for _, conflict := range deltaResult.Conflicts {
				conflicted[conflict.EntityID] = true
				if err := o.parkConflict(ctx, conflict, result); err != nil {
					return err
				}
			}

			// Применяем pull в порядке фида, конфликтные сущности
			// решаются через resolver, не прямой записью
			for _, change := range deltaResult.ToPull {
				if conflicted[change.EntityID] {
					continue
				}
				if err := o.applyToCache(ctx, change); err != nil {
					return err
				}
				result.Pulled++
			}

			if err := o.versions.SaveVersion(ctx, &models.SyncVersion{
				EntityType: entityType,
				Version:    resp.NewVersion,
				UpdatedAt:  time.Now().Unix(),
			}); err != nil {
				return fmt.Errorf("failed to save watermark for %s: %w", entityType, err)
			}

			if !resp.HasMore {
				break
			}
		}
	}

	return nil
}

// pendingChanges возвращает локальные неотправленные изменения одного типа
func (o *Orchestrator) pendingChanges(ctx context.Context, entityType string) ([]*models.SyncChange, error) {
	ops, err := o.queue.GetPending(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending queue: %w", err)
	}

	changes := make([]*models.SyncChange, 0, len(ops))
	for _, op := range ops {
		if op.EntityType != entityType {
			continue
		}
		changes = append(changes, op.ToChange())
	}
	return changes, nil
}

// applyToCache применяет одно изменение к локальному read-model
func (o *Orchestrator) applyToCache(ctx context.Context, change *models.SyncChange) error {
	if change.Operation == models.OperationDelete {
		if err := o.cache.DeleteEntity(ctx, change.EntityType, change.EntityID); err != nil {
			return fmt.Errorf("failed to delete entity %s: %w", change.EntityID, err)
		}
		return nil
	}
	if err := o.cache.SaveEntity(ctx, change); err != nil {
		return fmt.Errorf("failed to save entity %s: %w", change.EntityID, err)
	}
	return nil
}

// changeToRecord конвертирует изменение в wire-формат
func changeToRecord(change *models.SyncChange, idempotencyKey string) api.ChangeRecord {
	return api.ChangeRecord{
		Payload:        change.Payload,
		ID:             change.ID,
		EntityType:     change.EntityType,
		EntityID:       change.EntityID,
		Operation:      string(change.Operation),
		IdempotencyKey: idempotencyKey,
		Version:        change.Version,
		Timestamp:      change.Timestamp,
	}
}

// recordToChange конвертирует wire-формат в изменение
func recordToChange(record api.ChangeRecord) *models.SyncChange {
	return &models.SyncChange{
		Payload:    record.Payload,
		ID:         record.ID,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Operation:  models.Operation(record.Operation),
		Version:    record.Version,
		Timestamp:  record.Timestamp,
	}
}

package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/client/storage/boltdb"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/pkg/api"
)

// fakeConnectivity - управляемое состояние связности для тестов
type fakeConnectivity struct {
	events chan bool
	online bool
}

func (f *fakeConnectivity) IsOnline() bool         { return f.online }
func (f *fakeConnectivity) Subscribe() <-chan bool { return f.events }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestOrchestrator собирает оркестратор на реальном bolt-хранилище
func newTestOrchestrator(t *testing.T, apiMock *httpClient.ClientAPIMock, cfg Config) (*Orchestrator, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	require.NoError(t, store.SaveAuth(context.Background(), &storage.AuthData{
		Username:    "testuser",
		UserID:      "user-1",
		AccessToken: "token-1",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}))

	netmon := &fakeConnectivity{online: true, events: make(chan bool, 1)}
	orch := NewOrchestrator(
		apiMock, store, store, store, store, store,
		netmon, models.DefaultPolicy(), cfg, discardLogger(),
	)
	return orch, store
}

// enqueueOp кладет операцию в очередь напрямую
func enqueueOp(t *testing.T, store *boltdb.Storage, id, entityID string, op models.Operation, version, timestamp int64) {
	t.Helper()
	require.NoError(t, store.Enqueue(context.Background(), &models.PendingOperation{
		Payload:        map[string]string{"title": "local-" + id},
		ID:             id,
		EntityType:     "task",
		EntityID:       entityID,
		Operation:      op,
		IdempotencyKey: "idem-" + id,
		Version:        version,
		Timestamp:      timestamp,
		CreatedAt:      timestamp,
	}))
}

// emptyPull - pull без изменений
func emptyPull(ctx context.Context, token, entityType string, since int64, limit int) (*api.PullResponse, error) {
	return &api.PullResponse{NewVersion: since}, nil
}

func TestSyncOffline(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &httpClient.ClientAPIMock{}, Config{EntityTypes: []string{"task"}})
	orch.netmon.(*fakeConnectivity).online = false

	_, err := orch.Sync(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
}

func TestSyncNotAuthenticated(t *testing.T) {
	orch, store := newTestOrchestrator(t, &httpClient.ClientAPIMock{}, Config{EntityTypes: []string{"task"}})
	require.NoError(t, store.DeleteAuth(context.Background()))

	_, err := orch.Sync(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSyncRejectsConcurrentRun(t *testing.T) {
	var orch *Orchestrator
	inFlight := make(chan error, 1)

	apiMock := &httpClient.ClientAPIMock{
		PushChangeFunc: func(ctx context.Context, token string, req api.PushRequest) (*api.PushResponse, error) {
			// Второй запуск во время первого должен быть отклонен, не поставлен в очередь
			_, err := orch.Sync(ctx)
			inFlight <- err
			return &api.PushResponse{ServerSeq: 1}, nil
		},
		PullChangesFunc: emptyPull,
	}

	var store *boltdb.Storage
	orch, store = newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}})
	enqueueOp(t, store, "op-1", "t1", models.OperationCreate, 1, 1000)

	_, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, <-inFlight, ErrSyncInProgress)
}

func TestSyncPushDrainsQueue(t *testing.T) {
	var pushed []string
	apiMock := &httpClient.ClientAPIMock{
		PushChangeFunc: func(ctx context.Context, token string, req api.PushRequest) (*api.PushResponse, error) {
			assert.Equal(t, "token-1", token)
			assert.NotEmpty(t, req.Change.IdempotencyKey)
			pushed = append(pushed, req.Change.ID)
			return &api.PushResponse{ServerSeq: int64(len(pushed))}, nil
		},
		PullChangesFunc: emptyPull,
	}

	orch, store := newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}})
	enqueueOp(t, store, "op-1", "t1", models.OperationCreate, 1, 1000)
	enqueueOp(t, store, "op-2", "t2", models.OperationCreate, 1, 1001)

	result, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)
	// Отправка в порядке создания
	assert.Equal(t, []string{"op-1", "op-2"}, pushed)

	count, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	status := orch.Status()
	assert.Equal(t, models.StateIdle, status.State)
	assert.Equal(t, 2, status.ItemsSynced)
	assert.NotZero(t, status.LastSyncAt)
}

func TestSyncPushDropsInvalidOperation(t *testing.T) {
	apiMock := &httpClient.ClientAPIMock{
		PullChangesFunc: emptyPull,
	}

	orch, store := newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}})
	// Пустой entity id не пройдет валидацию
	enqueueOp(t, store, "op-1", "", models.OperationCreate, 1, 1000)

	result, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Pushed)

	count, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSyncPushTransientFailureAndAbandon(t *testing.T) {
	apiMock := &httpClient.ClientAPIMock{
		PushChangeFunc: func(ctx context.Context, token string, req api.PushRequest) (*api.PushResponse, error) {
			return nil, errors.New("connection refused")
		},
		PullChangesFunc: emptyPull,
	}

	orch, store := newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}, MaxRetries: 2})
	enqueueOp(t, store, "op-1", "t1", models.OperationCreate, 1, 1000)

	// Первый цикл: транзиентная ошибка, счетчик повторов растет
	_, err := orch.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.StateError, orch.Status().State)
	assert.NotEmpty(t, orch.Status().LastError)

	op, err := store.GetOperation(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, 1, op.RetryCount)
	assert.Equal(t, "connection refused", op.LastError)

	// Второй цикл исчерпывает потолок: операция бросается на месте,
	// цикл завершается успешно
	result, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Abandoned)

	// Брошенная операция остается в хранилище для оператора
	count, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pending, err := store.GetPending(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncPushConflictAutoResolved(t *testing.T) {
	serverCurrent := api.ChangeRecord{
		Payload:    map[string]string{"title": "remote"},
		ID:         "srv-1",
		EntityType: "task",
		EntityID:   "t1",
		Operation:  "update",
		Version:    5,
		Timestamp:  1000,
	}

	var repushed []api.ChangeRecord
	apiMock := &httpClient.ClientAPIMock{
		PushChangeFunc: func(ctx context.Context, token string, req api.PushRequest) (*api.PushResponse, error) {
			if req.Change.ID == "op-1" {
				return nil, &httpClient.ConflictError{Current: serverCurrent, Message: "version conflict"}
			}
			repushed = append(repushed, req.Change)
			return &api.PushResponse{ServerSeq: 10}, nil
		},
		PullChangesFunc: emptyPull,
	}

	orch, store := newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}})
	// Локальное изменение свежее серверного: при LWW побеждает локальное
	enqueueOp(t, store, "op-1", "t1", models.OperationUpdate, 2, 2000)

	result, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ConflictsFound)
	assert.Equal(t, 1, result.AutoResolved)

	// Победитель применен к кешу
	entity, err := store.GetEntity(context.Background(), "task", "t1")
	require.NoError(t, err)
	assert.Equal(t, "local-op-1", entity.Payload["title"])

	// Локальная победа должна доехать до сервера с версией выше серверной
	pending, err := store.GetPending(context.Background(), 3, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(6), pending[0].Version)
	assert.NotEqual(t, "idem-op-1", pending[0].IdempotencyKey)

	// Конфликт разрешен, но сохранен для аудита
	unresolved, err := store.GetUnresolved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unresolved)
}

func TestSyncPullAppliesAndAdvancesWatermark(t *testing.T) {
	var sinceSeen []int64
	apiMock := &httpClient.ClientAPIMock{
		PullChangesFunc: func(ctx context.Context, token, entityType string, since int64, limit int) (*api.PullResponse, error) {
			sinceSeen = append(sinceSeen, since)
			if since > 0 {
				return &api.PullResponse{NewVersion: since}, nil
			}
			return &api.PullResponse{
				Records: []api.ChangeRecord{
					{Payload: map[string]string{"title": "a"}, ID: "c1", EntityType: "task", EntityID: "t1", Operation: "create", Version: 1, Timestamp: 100},
					{Payload: map[string]string{"title": "b"}, ID: "c2", EntityType: "task", EntityID: "t2", Operation: "update", Version: 3, Timestamp: 200},
				},
				NewVersion: 5,
			}, nil
		},
	}

	orch, store := newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}})

	result, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pulled)

	version, err := store.GetVersion(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, int64(5), version)

	entities, err := store.ListEntities(context.Background(), "task")
	require.NoError(t, err)
	assert.Len(t, entities, 2)

	// Второй цикл стартует с нового watermark
	_, err = orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 5}, sinceSeen)
}

func TestSyncPullRemoteDeleteConflictParkedForManual(t *testing.T) {
	apiMock := &httpClient.ClientAPIMock{
		PullChangesFunc: func(ctx context.Context, token, entityType string, since int64, limit int) (*api.PullResponse, error) {
			if since > 0 {
				return &api.PullResponse{NewVersion: since}, nil
			}
			return &api.PullResponse{
				Records: []api.ChangeRecord{
					{ID: "srv-del", EntityType: "task", EntityID: "t1", Operation: "delete", Version: 4, Timestamp: 3000},
				},
				NewVersion: 7,
			}, nil
		},
	}

	orch, store := newTestOrchestrator(t, apiMock, Config{EntityTypes: []string{"task"}})
	// Локальный update против удаленного delete: HIGH, ждет человека
	enqueueOp(t, store, "op-1", "t1", models.OperationUpdate, 2, 2000)

	result, err := orch.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ConflictsFound)
	assert.Equal(t, 0, result.AutoResolved)
	// Конфликтная сущность не применяется из фида напрямую
	assert.Equal(t, 0, result.Pulled)

	// Породившая конфликт операция снята с очереди
	count, err := store.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	conflicts, err := orch.ListConflicts(context.Background())
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictUpdateDelete, conflicts[0].Type)
	assert.Equal(t, models.SeverityHigh, conflicts[0].Severity)

	// Явное разрешение в пользу локальной стороны
	require.NoError(t, orch.ResolveConflict(context.Background(), conflicts[0].ID, models.StrategyKeepLocal))

	entity, err := store.GetEntity(context.Background(), "task", "t1")
	require.NoError(t, err)
	assert.Equal(t, "local-op-1", entity.Payload["title"])

	// Локальная победа встает в очередь с версией выше серверной
	pending, err := store.GetPending(context.Background(), 3, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(5), pending[0].Version)

	unresolved, err := store.GetUnresolved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unresolved)
}

func TestResolveConflictRejectsManual(t *testing.T) {
	orch, store := newTestOrchestrator(t, &httpClient.ClientAPIMock{}, Config{EntityTypes: []string{"task"}})

	local := &models.SyncChange{ID: "l1", EntityType: "task", EntityID: "t1", Operation: models.OperationUpdate, Version: 1, Timestamp: 100}
	remote := &models.SyncChange{ID: "r1", EntityType: "task", EntityID: "t1", Operation: models.OperationUpdate, Version: 2, Timestamp: 200}
	conflict := models.NewConflict(local, remote, models.ConflictUpdateUpdate, time.Now())
	require.NoError(t, store.SaveConflict(context.Background(), conflict))

	err := orch.ResolveConflict(context.Background(), conflict.ID, models.StrategyManual)
	assert.ErrorIs(t, err, ErrManualStrategy)

	err = orch.ResolveConflict(context.Background(), conflict.ID, models.ResolutionStrategy("bogus"))
	require.Error(t, err)

	require.NoError(t, orch.ResolveConflict(context.Background(), conflict.ID, models.StrategyKeepRemote))
	err = orch.ResolveConflict(context.Background(), conflict.ID, models.StrategyKeepRemote)
	assert.ErrorIs(t, err, ErrConflictResolved)
}

func TestRunReconnectTriggersSync(t *testing.T) {
	synced := make(chan struct{}, 4)
	apiMock := &httpClient.ClientAPIMock{
		PullChangesFunc: func(ctx context.Context, token, entityType string, since int64, limit int) (*api.PullResponse, error) {
			select {
			case synced <- struct{}{}:
			default:
			}
			return &api.PullResponse{NewVersion: since}, nil
		},
	}

	orch, _ := newTestOrchestrator(t, apiMock, Config{
		EntityTypes:       []string{"task"},
		SyncInterval:      time.Hour,
		ReconnectDebounce: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(ctx)

	// Восстановление связи запускает цикл после дебаунса
	orch.netmon.(*fakeConnectivity).events <- true
	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("expected sync after reconnect")
	}
}

func TestTriggerSyncCoalesces(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &httpClient.ClientAPIMock{}, Config{EntityTypes: []string{"task"}})

	// Повторные запросы без работающего цикла не должны блокировать
	orch.TriggerSync()
	orch.TriggerSync()
	orch.TriggerSync()
}

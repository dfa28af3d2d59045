// Package data реализует локальные мутации поверх outbox-паттерна:
// каждая мутация синхронно пишет кеш и ставит операцию в очередь отправки.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/validation"
)

//go:generate moq -out service_mock.go . Service

// ErrInvalidChange возвращается когда мутация не проходит валидацию
var ErrInvalidChange = errors.New("invalid change")

// Notifier подталкивает оркестратор к внеочередной синхронизации
type Notifier interface {
	TriggerSync()
}

// Service определяет интерфейс локальных мутаций
type Service interface {
	// Put создает или обновляет сущность. Пустой entityID означает
	// создание с сгенерированным идентификатором.
	Put(ctx context.Context, entityType, entityID string, payload map[string]string) (*models.SyncChange, error)

	// Get возвращает последнее примененное состояние сущности
	Get(ctx context.Context, entityType, entityID string) (*models.SyncChange, error)

	// List возвращает все сущности типа
	List(ctx context.Context, entityType string) ([]*models.SyncChange, error)

	// Delete удаляет сущность локально и ставит удаление в очередь
	Delete(ctx context.Context, entityType, entityID string) error
}

// service handles client-side mutations
type service struct {
	cache    storage.CacheStorage
	queue    storage.QueueStorage
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a new data service
func NewService(cache storage.CacheStorage, queue storage.QueueStorage, notifier Notifier, logger *slog.Logger) Service {
	return &service{
		cache:    cache,
		queue:    queue,
		notifier: notifier,
		logger:   logger,
	}
}

// Put создает или обновляет сущность.
// Версия растет от последнего примененного состояния в кеше.
func (s *service) Put(ctx context.Context, entityType, entityID string, payload map[string]string) (*models.SyncChange, error) {
	operation := models.OperationCreate
	var version int64 = 1

	if entityID == "" {
		entityID = uuid.NewString()
	} else {
		current, err := s.cache.GetEntity(ctx, entityType, entityID)
		switch {
		case err == nil:
			operation = models.OperationUpdate
			version = current.Version + 1
		case errors.Is(err, storage.ErrEntityNotFound):
			// Создание с заданным id
		default:
			return nil, fmt.Errorf("failed to read entity: %w", err)
		}
	}

	change := &models.SyncChange{
		Payload:    payload,
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Version:    version,
		Timestamp:  time.Now().Unix(),
	}

	if vr := validation.ValidateChange(change); !vr.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChange, vr.Errors)
	}

	if err := s.commit(ctx, change); err != nil {
		return nil, err
	}
	return change, nil
}

// Get возвращает последнее примененное состояние сущности
func (s *service) Get(ctx context.Context, entityType, entityID string) (*models.SyncChange, error) {
	return s.cache.GetEntity(ctx, entityType, entityID)
}

// List возвращает все сущности типа
func (s *service) List(ctx context.Context, entityType string) ([]*models.SyncChange, error) {
	return s.cache.ListEntities(ctx, entityType)
}

// Delete удаляет сущность локально и ставит удаление в очередь отправки
func (s *service) Delete(ctx context.Context, entityType, entityID string) error {
	current, err := s.cache.GetEntity(ctx, entityType, entityID)
	if err != nil {
		return fmt.Errorf("failed to read entity: %w", err)
	}

	change := &models.SyncChange{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  models.OperationDelete,
		Version:    current.Version + 1,
		Timestamp:  time.Now().Unix(),
	}

	return s.commit(ctx, change)
}

// commit атомарно для вызывающего: применяет изменение к кешу, кладет
// операцию в очередь и подталкивает синхронизацию
func (s *service) commit(ctx context.Context, change *models.SyncChange) error {
	if change.Operation == models.OperationDelete {
		if err := s.cache.DeleteEntity(ctx, change.EntityType, change.EntityID); err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
	} else {
		if err := s.cache.SaveEntity(ctx, change); err != nil {
			return fmt.Errorf("failed to save entity: %w", err)
		}
	}

	op := &models.PendingOperation{
		Payload:        change.Payload,
		ID:             change.ID,
		EntityType:     change.EntityType,
		EntityID:       change.EntityID,
		Operation:      change.Operation,
		IdempotencyKey: uuid.NewString(),
		Version:        change.Version,
		Timestamp:      change.Timestamp,
		CreatedAt:      time.Now().Unix(),
	}
	if err := s.queue.Enqueue(ctx, op); err != nil {
		return fmt.Errorf("failed to enqueue operation: %w", err)
	}

	s.logger.Debug("mutation queued",
		"entity_type", change.EntityType,
		"entity_id", change.EntityID,
		"operation", string(change.Operation),
		"version", change.Version)

	// Оппортунистическая отправка: если сеть есть, изменение уедет сразу
	s.notifier.TriggerSync()
	return nil
}

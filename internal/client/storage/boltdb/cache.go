package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/models"
)

// cacheKey строит ключ сущности в cache bucket
func cacheKey(entityType, entityID string) []byte {
	return []byte(entityType + "/" + entityID)
}

// SaveEntity stores the latest applied change for an entity
func (s *Storage) SaveEntity(ctx context.Context, change *models.SyncChange) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)

		data, err := json.Marshal(change)
		if err != nil {
			return fmt.Errorf("failed to marshal entity: %w", err)
		}

		if err := bucket.Put(cacheKey(change.EntityType, change.EntityID), data); err != nil {
			return fmt.Errorf("failed to save entity: %w", err)
		}

		return nil
	})
}

// GetEntity retrieves the latest applied change for an entity
func (s *Storage) GetEntity(ctx context.Context, entityType, entityID string) (*models.SyncChange, error) {
	var change *models.SyncChange

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCache).Get(cacheKey(entityType, entityID))
		if data == nil {
			return storage.ErrEntityNotFound
		}

		change = &models.SyncChange{}
		if err := json.Unmarshal(data, change); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// DeleteEntity removes an entity from the cache.
// Удаление неизвестной сущности не ошибка.
func (s *Storage) DeleteEntity(ctx context.Context, entityType, entityID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketCache).Delete(cacheKey(entityType, entityID)); err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
		return nil
	})
}

// ListEntities returns all cached entities of the given type
func (s *Storage) ListEntities(ctx context.Context, entityType string) ([]*models.SyncChange, error) {
	var changes []*models.SyncChange
	prefix := []byte(entityType + "/")

	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketCache).Cursor()

		for k, v := cursor.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = cursor.Next() {
			var change models.SyncChange
			if err := json.Unmarshal(v, &change); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			changes = append(changes, &change)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

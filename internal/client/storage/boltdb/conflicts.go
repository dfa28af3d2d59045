package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/models"
)

// SaveConflict persists a detected conflict
func (s *Storage) SaveConflict(ctx context.Context, conflict *models.SyncConflict) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)

		data, err := json.Marshal(conflict)
		if err != nil {
			return fmt.Errorf("failed to marshal conflict: %w", err)
		}

		if err := bucket.Put([]byte(conflict.ID), data); err != nil {
			return fmt.Errorf("failed to save conflict: %w", err)
		}

		return nil
	})
}

// GetConflict retrieves a conflict by id
func (s *Storage) GetConflict(ctx context.Context, id string) (*models.SyncConflict, error) {
	var conflict *models.SyncConflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketConflicts).Get([]byte(id))
		if data == nil {
			return storage.ErrConflictNotFound
		}

		conflict = &models.SyncConflict{}
		if err := json.Unmarshal(data, conflict); err != nil {
			return fmt.Errorf("failed to unmarshal conflict: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conflict, nil
}

// GetUnresolved returns all unresolved conflicts ordered by detection time
func (s *Storage) GetUnresolved(ctx context.Context) ([]*models.SyncConflict, error) {
	var conflicts []*models.SyncConflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConflicts).ForEach(func(k, v []byte) error {
			var conflict models.SyncConflict
			if err := json.Unmarshal(v, &conflict); err != nil {
				return fmt.Errorf("failed to unmarshal conflict: %w", err)
			}
			if conflict.Resolved {
				return nil
			}
			conflicts = append(conflicts, &conflict)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].DetectedAt < conflicts[j].DetectedAt
	})

	return conflicts, nil
}

// MarkResolved marks a conflict as resolved with the strategy used.
// Разрешенные конфликты остаются в хранилище для аудита.
func (s *Storage) MarkResolved(ctx context.Context, id string, strategy models.ResolutionStrategy, resolvedAt int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrConflictNotFound
		}

		var conflict models.SyncConflict
		if err := json.Unmarshal(data, &conflict); err != nil {
			return fmt.Errorf("failed to unmarshal conflict: %w", err)
		}

		conflict.Resolved = true
		conflict.ResolvedWith = strategy
		conflict.ResolvedAt = resolvedAt

		updated, err := json.Marshal(&conflict)
		if err != nil {
			return fmt.Errorf("failed to marshal conflict: %w", err)
		}
		if err := bucket.Put([]byte(id), updated); err != nil {
			return fmt.Errorf("failed to save conflict: %w", err)
		}

		return nil
	})
}

// CountUnresolved returns the number of unresolved conflicts
func (s *Storage) CountUnresolved(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConflicts).ForEach(func(k, v []byte) error {
			var conflict models.SyncConflict
			if err := json.Unmarshal(v, &conflict); err != nil {
				return fmt.Errorf("failed to unmarshal conflict: %w", err)
			}
			if !conflict.Resolved {
				count++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

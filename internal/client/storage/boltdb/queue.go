package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/models"
)

// Enqueue appends a pending operation to the queue.
// FIFO порядок обеспечивается монотонным NextSequence ключом,
// индексный bucket отображает id операции на этот ключ.
func (s *Storage) Enqueue(ctx context.Context, op *models.PendingOperation) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		index := tx.Bucket(bucketQueueIndex)

		seq, err := queue.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get queue sequence: %w", err)
		}
		key := []byte(fmt.Sprintf("%020d", seq))

		data, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("failed to marshal operation: %w", err)
		}

		if err := queue.Put(key, data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}
		if err := index.Put([]byte(op.ID), key); err != nil {
			return fmt.Errorf("failed to index operation: %w", err)
		}

		return nil
	})
}

// GetPending returns queued operations in creation order.
// Операции, исчерпавшие retry budget, пропускаются. limit <= 0 - без лимита.
func (s *Storage) GetPending(ctx context.Context, maxRetries, limit int) ([]*models.PendingOperation, error) {
	var ops []*models.PendingOperation

	err := s.db.View(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)

		return queue.ForEach(func(k, v []byte) error {
			if limit > 0 && len(ops) >= limit {
				return nil
			}

			var op models.PendingOperation
			if err := json.Unmarshal(v, &op); err != nil {
				return fmt.Errorf("failed to unmarshal operation: %w", err)
			}
			if maxRetries > 0 && op.RetryCount >= maxRetries {
				return nil
			}

			ops = append(ops, &op)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

// GetOperation retrieves a single operation by id
func (s *Storage) GetOperation(ctx context.Context, id string) (*models.PendingOperation, error) {
	var op *models.PendingOperation

	err := s.db.View(func(tx *bbolt.Tx) error {
		data, err := s.lookupOperation(tx, id)
		if err != nil {
			return err
		}

		op = &models.PendingOperation{}
		if err := json.Unmarshal(data, op); err != nil {
			return fmt.Errorf("failed to unmarshal operation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return op, nil
}

// DeleteOperation removes an acknowledged operation from the queue
func (s *Storage) DeleteOperation(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		index := tx.Bucket(bucketQueueIndex)

		key := index.Get([]byte(id))
		if key == nil {
			return storage.ErrOperationNotFound
		}

		if err := queue.Delete(key); err != nil {
			return fmt.Errorf("failed to delete operation: %w", err)
		}
		if err := index.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete operation index: %w", err)
		}

		return nil
	})
}

// MarkFailed increments the retry counter and stores the last error
func (s *Storage) MarkFailed(ctx context.Context, id string, lastError string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		index := tx.Bucket(bucketQueueIndex)

		key := index.Get([]byte(id))
		if key == nil {
			return storage.ErrOperationNotFound
		}

		var op models.PendingOperation
		if err := json.Unmarshal(queue.Get(key), &op); err != nil {
			return fmt.Errorf("failed to unmarshal operation: %w", err)
		}

		op.RetryCount++
		op.LastError = lastError

		data, err := json.Marshal(&op)
		if err != nil {
			return fmt.Errorf("failed to marshal operation: %w", err)
		}
		if err := queue.Put(key, data); err != nil {
			return fmt.Errorf("failed to save operation: %w", err)
		}

		return nil
	})
}

// CountPending returns the total number of queued operations
func (s *Storage) CountPending(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketQueue).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// lookupOperation находит сырые данные операции через индексный bucket
func (s *Storage) lookupOperation(tx *bbolt.Tx, id string) ([]byte, error) {
	index := tx.Bucket(bucketQueueIndex)

	key := index.Get([]byte(id))
	if key == nil {
		return nil, storage.ErrOperationNotFound
	}

	data := tx.Bucket(bucketQueue).Get(key)
	if data == nil {
		return nil, storage.ErrOperationNotFound
	}

	return data, nil
}

package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/deltasync/internal/models"
)

// SaveVersion stores a per-entity-type sync watermark.
// Watermark монотонно не убывает: попытка записать меньшую версию игнорируется.
func (s *Storage) SaveVersion(ctx context.Context, version *models.SyncVersion) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketVersions)
		key := []byte(version.EntityType)

		if data := bucket.Get(key); data != nil {
			var current models.SyncVersion
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("failed to unmarshal version: %w", err)
			}
			if version.Version < current.Version {
				return nil
			}
		}

		data, err := json.Marshal(version)
		if err != nil {
			return fmt.Errorf("failed to marshal version: %w", err)
		}
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save version: %w", err)
		}

		return nil
	})
}

// GetVersion returns the stored watermark for an entity type, 0 if none
func (s *Storage) GetVersion(ctx context.Context, entityType string) (int64, error) {
	var result int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketVersions).Get([]byte(entityType))
		if data == nil {
			return nil
		}

		var version models.SyncVersion
		if err := json.Unmarshal(data, &version); err != nil {
			return fmt.Errorf("failed to unmarshal version: %w", err)
		}

		result = version.Version
		return nil
	})
	if err != nil {
		return 0, err
	}

	return result, nil
}

// ListVersions returns all stored watermarks
func (s *Storage) ListVersions(ctx context.Context) ([]*models.SyncVersion, error) {
	var versions []*models.SyncVersion

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVersions).ForEach(func(k, v []byte) error {
			var version models.SyncVersion
			if err := json.Unmarshal(v, &version); err != nil {
				return fmt.Errorf("failed to unmarshal version: %w", err)
			}
			versions = append(versions, &version)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return versions, nil
}

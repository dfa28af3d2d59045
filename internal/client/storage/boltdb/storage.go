// Package boltdb реализует клиентские интерфейсы хранения поверх
// одного bbolt-файла с бакетом на каждую заботу
package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	bucketAuth       = []byte("auth")
	bucketQueue      = []byte("queue")       // порядковый ключ -> операция
	bucketQueueIndex = []byte("queue_index") // id операции -> порядковый ключ
	bucketConflicts  = []byte("conflicts")
	bucketVersions   = []byte("versions")
	bucketCache      = []byte("cache")
)

// Storage - bbolt-хранилище клиента. Реализует все пять
// storage-интерфейсов: auth, queue, conflicts, versions, cache.
type Storage struct {
	db *bbolt.DB
}

// New открывает bbolt-файл по пути dbPath и создает бакеты
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return s, nil
}

// Close закрывает базу
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{
			bucketAuth,
			bucketQueue,
			bucketQueueIndex,
			bucketConflicts,
			bucketVersions,
			bucketCache,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

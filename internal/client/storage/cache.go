package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

//go:generate moq -out cache_mock.go . CacheStorage

// CacheStorage defines interface for the local read-model of synced
// entities: the last applied change per (entity type, entity id).
// The app keeps operating on this cache regardless of sync outcome.
type CacheStorage interface {
	// SaveEntity stores the latest applied change for an entity
	SaveEntity(ctx context.Context, change *models.SyncChange) error

	// GetEntity retrieves the latest applied change for an entity
	// Returns ErrEntityNotFound if the entity is unknown
	GetEntity(ctx context.Context, entityType, entityID string) (*models.SyncChange, error)

	// DeleteEntity removes an entity from the cache
	// Deleting an unknown entity is not an error
	DeleteEntity(ctx context.Context, entityType, entityID string) error

	// ListEntities returns all cached entities of the given type
	ListEntities(ctx context.Context, entityType string) ([]*models.SyncChange, error)
}

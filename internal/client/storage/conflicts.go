package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

//go:generate moq -out conflicts_mock.go . ConflictStorage

// ConflictStorage defines interface for the persisted conflict store.
// Resolved conflicts are marked, never deleted - the store is an audit log.
type ConflictStorage interface {
	// SaveConflict persists a detected conflict
	SaveConflict(ctx context.Context, conflict *models.SyncConflict) error

	// GetConflict retrieves a conflict by id
	// Returns ErrConflictNotFound if it doesn't exist
	GetConflict(ctx context.Context, id string) (*models.SyncConflict, error)

	// GetUnresolved returns all unresolved conflicts ordered by detection time
	GetUnresolved(ctx context.Context) ([]*models.SyncConflict, error)

	// MarkResolved marks a conflict as resolved with the strategy used
	// Returns ErrConflictNotFound if it doesn't exist
	MarkResolved(ctx context.Context, id string, strategy models.ResolutionStrategy, resolvedAt int64) error

	// CountUnresolved returns the number of unresolved conflicts
	CountUnresolved(ctx context.Context) (int, error)
}

package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

//go:generate moq -out versions_mock.go . VersionStorage

// VersionStorage defines interface for per-entity-type sync watermarks
type VersionStorage interface {
	// SaveVersion stores a watermark. Watermarks are monotonically
	// non-decreasing: saving a lower version than the stored one is a no-op.
	SaveVersion(ctx context.Context, version *models.SyncVersion) error

	// GetVersion returns the stored watermark for an entity type
	// Returns 0 if no pull has been applied yet
	GetVersion(ctx context.Context, entityType string) (int64, error)

	// ListVersions returns all stored watermarks
	ListVersions(ctx context.Context) ([]*models.SyncVersion, error)
}

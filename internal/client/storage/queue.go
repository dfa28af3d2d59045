package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines interface for the durable pending-operation queue.
// The queue is owned exclusively by the sync orchestrator; entries are
// appended synchronously on every local mutation and deleted only after
// the server acknowledged the push.
type QueueStorage interface {
	// Enqueue appends a pending operation to the queue (FIFO by creation)
	Enqueue(ctx context.Context, op *models.PendingOperation) error

	// GetPending returns queued operations in creation order.
	// Operations with RetryCount >= maxRetries are skipped (abandoned
	// in place, kept for operator visibility). limit <= 0 means no limit.
	GetPending(ctx context.Context, maxRetries, limit int) ([]*models.PendingOperation, error)

	// GetOperation retrieves a single operation by id
	// Returns ErrOperationNotFound if it doesn't exist
	GetOperation(ctx context.Context, id string) (*models.PendingOperation, error)

	// DeleteOperation removes an acknowledged operation from the queue
	// Returns ErrOperationNotFound if it doesn't exist
	DeleteOperation(ctx context.Context, id string) error

	// MarkFailed increments the retry counter and stores the last error
	// Returns ErrOperationNotFound if the operation doesn't exist
	MarkFailed(ctx context.Context, id string, lastError string) error

	// CountPending returns the total number of queued operations
	// Used for UI badges and status output
	CountPending(ctx context.Context) (int, error)
}

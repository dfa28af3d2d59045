package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/deltasync/internal/models"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

// createTestUser вставляет пользователя и возвращает его ID
func createTestUser(t *testing.T, s *Storage, username string) string {
	t.Helper()

	user := &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		AuthKeyHash: "hash-" + username,
		PublicSalt:  "salt-" + username,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	return user.ID
}

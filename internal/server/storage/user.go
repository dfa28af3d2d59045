package storage

import (
	"context"
	"time"

	"github.com/iudanet/deltasync/internal/models"
)

// UserStorage определяет интерфейс хранилища пользователей
type UserStorage interface {
	// CreateUser создает нового пользователя.
	// Возвращает ErrUserAlreadyExists при занятом username.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername возвращает пользователя по username.
	// Возвращает ErrUserNotFound если пользователя нет.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID возвращает пользователя по ID.
	// Возвращает ErrUserNotFound если пользователя нет.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateLastLogin обновляет время последнего логина
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}

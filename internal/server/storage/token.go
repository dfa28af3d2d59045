package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

// TokenStorage определяет интерфейс хранилища refresh-токенов
type TokenStorage interface {
	// SaveRefreshToken сохраняет refresh token.
	// Существующий токен с тем же значением перезаписывается.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken возвращает refresh token по значению.
	// Возвращает ErrTokenNotFound если токена нет.
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteRefreshToken удаляет refresh token по значению.
	// Возвращает ErrTokenNotFound если токена нет.
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteExpiredTokens удаляет все просроченные токены.
	// Возвращает количество удаленных.
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

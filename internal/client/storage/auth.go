package storage

import "context"

//go:generate moq -out auth_mock.go . AuthStorage

// AuthStorage определяет интерфейс хранилища клиентской сессии
type AuthStorage interface {
	// SaveAuth сохраняет данные сессии, перезаписывая предыдущие
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth возвращает сохраненную сессию.
	// Возвращает ErrAuthNotFound если сессии нет.
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth удаляет сессию (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated сообщает, есть ли непросроченная сессия
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData - сохраняемое состояние сессии
type AuthData struct {
	Username     string `json:"username"`
	UserID       string `json:"user_id"`
	NodeID       string `json:"node_id"` // NodeID уникальный ID этого устройства
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	PublicSalt   string `json:"public_salt"`
	ExpiresAt    int64  `json:"expires_at"` // unix-секунды истечения access token
}

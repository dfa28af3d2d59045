package storage

import (
	"context"

	"github.com/iudanet/deltasync/internal/models"
)

// StoredChange - изменение, принятое сервером: SyncChange плюс позиция
// в фиде пользователя и метаданные приема
type StoredChange struct {
	Change         models.SyncChange `json:"change"`
	IdempotencyKey string            `json:"idempotency_key"`
	ServerSeq      int64             `json:"server_seq"`
	ReceivedAt     int64             `json:"received_at"`
}

// ChangeFeed - страница фида изменений пользователя
type ChangeFeed struct {
	Records []*StoredChange
	// NewVersion - server_seq последней записи страницы; watermark
	// для следующего запроса. Равен since при пустой странице.
	NewVersion int64
	HasMore    bool
}

// ChangeStorage определяет интерфейс append-only лога изменений.
// Лог - источник истины фида: записи не модифицируются и не удаляются,
// каждая получает монотонный server_seq в рамках всего лога.
type ChangeStorage interface {
	// ApplyChange добавляет изменение в лог пользователя.
	//
	// Правило версий: изменение принимается, только если его версия строго
	// больше версии последнего принятого изменения той же сущности; иначе
	// возвращается ErrVersionConflict.
	//
	// Дедупликация: изменение с уже виденным (user, idempotency key)
	// не применяется повторно - возвращается исходная запись и duplicate=true.
	// Дедупликация проверяется до правила версий, чтобы повтор push после
	// потерянного ответа не выглядел конфликтом.
	ApplyChange(ctx context.Context, userID string, change *models.SyncChange, idempotencyKey string) (*StoredChange, bool, error)

	// GetChangesSince возвращает страницу изменений пользователя по типу
	// сущности, строго после server_seq since, в порядке server_seq
	GetChangesSince(ctx context.Context, userID, entityType string, since int64, limit int) (*ChangeFeed, error)

	// GetCurrentChange возвращает последнее принятое изменение сущности.
	// Возвращает ErrChangeNotFound если по сущности нет записей.
	GetCurrentChange(ctx context.Context, userID, entityType, entityID string) (*StoredChange, error)
}

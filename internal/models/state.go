package models

import "time"

// SyncState - состояние машины состояний оркестратора:
// Idle -> Syncing -> {Success | Error} -> Idle
type SyncState int

// Состояния синхронизации
const (
	StateIdle SyncState = iota
	StateSyncing
	StateSuccess
	StateError
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// SyncStatus - наблюдаемое значение состояния синхронизации.
// Текущее значение читается синхронно, подписчики уведомляются при изменении.
type SyncStatus struct {
	LastError   string        `json:"last_error,omitempty"`
	State       SyncState     `json:"state"`
	RetryAfter  time.Duration `json:"retry_after,omitempty"` // RetryAfter рекомендованная задержка перед повтором (для StateError)
	ItemsSynced int           `json:"items_synced"`          // ItemsSynced количество синхронизированных записей последнего успешного цикла
	LastSyncAt  int64         `json:"last_sync_at,omitempty"`
}

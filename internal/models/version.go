package models

// SyncVersion - watermark по типу сущности: позиция в фиде сервера,
// до которой удаленные изменения успешно применены локально.
// Обновляется только после успешного pull-apply, монотонно не убывает.
type SyncVersion struct {
	EntityType string `json:"entity_type"`
	Version    int64  `json:"version"`
	UpdatedAt  int64  `json:"updated_at"`
}

package models

import (
	"fmt"
	"time"
)

// ConflictType классифицирует конфликт между локальным и удаленным изменением
type ConflictType string

// Типы конфликтов, которые различает детектор
const (
	ConflictUpdateUpdate    ConflictType = "update_update"
	ConflictUpdateDelete    ConflictType = "update_delete"
	ConflictDeleteUpdate    ConflictType = "delete_update"
	ConflictCreateCreate    ConflictType = "create_create"
	ConflictVersionMismatch ConflictType = "version_mismatch"
)

// Severity - грубый сигнал триажа: можно ли разрешать конфликт автоматически
type Severity int

// Уровни severity по возрастанию
const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	return "unknown"
}

// Severity возвращает severity конфликта.
// Детерминированная таблица: version_mismatch -> LOW,
// update_update/create_create -> MEDIUM, update_delete/delete_update -> HIGH.
func (t ConflictType) Severity() Severity {
	switch t {
	case ConflictVersionMismatch:
		return SeverityLow
	case ConflictUpdateUpdate, ConflictCreateCreate:
		return SeverityMedium
	case ConflictUpdateDelete, ConflictDeleteUpdate:
		return SeverityHigh
	}
	return SeverityHigh
}

// SyncConflict представляет обнаруженный конфликт между локальным и
// удаленным изменением одной сущности. Создается только детектором
// конфликтов, клиенты не конструируют его напрямую.
type SyncConflict struct {
	Local        SyncChange         `json:"local_change"`  // Local локальное изменение
	Remote       SyncChange         `json:"remote_change"` // Remote удаленное изменение
	ID           string             `json:"id"`            // ID уникальный идентификатор экземпляра конфликта
	EntityType   string             `json:"entity_type"`
	EntityID     string             `json:"entity_id"`
	Type         ConflictType       `json:"conflict_type"`
	ResolvedWith ResolutionStrategy `json:"resolved_with,omitempty"` // ResolvedWith стратегия, которой конфликт был разрешен
	Severity     Severity           `json:"severity"`                // Severity производная от Type, хранится для аудита
	DetectedAt   int64              `json:"detected_at"`             // DetectedAt время обнаружения (не время изменений)
	ResolvedAt   int64              `json:"resolved_at,omitempty"`
	// Resolved - конфликт разрешен. Разрешенные конфликты сохраняются
	// для аудита, не удаляются.
	Resolved bool `json:"resolved"`
}

// NewConflict создает конфликт из пары изменений.
// ID комбинирует entity id и время обнаружения.
func NewConflict(local, remote *SyncChange, conflictType ConflictType, detectedAt time.Time) *SyncConflict {
	return &SyncConflict{
		Local:      *local.Clone(),
		Remote:     *remote.Clone(),
		ID:         fmt.Sprintf("%s-%d", local.EntityID, detectedAt.UnixNano()),
		EntityType: local.EntityType,
		EntityID:   local.EntityID,
		Type:       conflictType,
		Severity:   conflictType.Severity(),
		DetectedAt: detectedAt.Unix(),
	}
}

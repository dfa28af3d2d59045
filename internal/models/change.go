package models

// Operation определяет тип мутации: CREATE, UPDATE или DELETE
type Operation string

// Операции, которые может описывать SyncChange
const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid проверяет, что операция - одна из трех известных
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// SyncChange представляет неизменяемую запись одной локальной или
// удаленной мутации. Это единица обмена между клиентом и сервером.
type SyncChange struct {
	// Payload - сериализованные поля сущности (ключ -> значение).
	// Реальные типы полей непрозрачны для sync-ядра.
	Payload    map[string]string `json:"payload"`
	ID         string            `json:"id"`          // ID уникальный идентификатор самого события изменения
	EntityType string            `json:"entity_type"` // EntityType логическое имя таблицы/коллекции ("listing", "message", "profile")
	EntityID   string            `json:"entity_id"`   // EntityID идентификатор мутированной сущности (уникален внутри EntityType)
	Operation  Operation         `json:"operation"`   // Operation тип мутации
	// Version - монотонный счетчик сущности на момент изменения.
	// Используется для обнаружения конкурентных правок, не для упорядочивания по времени.
	Version int64 `json:"version"`
	// Timestamp - секунды с эпохи. Вторичный ключ упорядочивания (tie-break
	// для last-write-wins), не авторитетный.
	Timestamp int64 `json:"timestamp"`
}

// Clone создает глубокую копию изменения
func (c *SyncChange) Clone() *SyncChange {
	payload := make(map[string]string, len(c.Payload))
	for k, v := range c.Payload {
		payload[k] = v
	}

	return &SyncChange{
		Payload:    payload,
		ID:         c.ID,
		EntityType: c.EntityType,
		EntityID:   c.EntityID,
		Operation:  c.Operation,
		Version:    c.Version,
		Timestamp:  c.Timestamp,
	}
}

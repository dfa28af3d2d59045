package models

// PendingOperation представляет одну неподтвержденную локальную мутацию,
// ожидающую отправки на сервер. Очередь pending-операций - durable outbox:
// запись создается синхронно при каждой локальной мутации, удаляется только
// после подтверждения сервером.
type PendingOperation struct {
	Payload    map[string]string `json:"payload"`
	ID         string            `json:"id"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Operation  Operation         `json:"operation"`
	// IdempotencyKey передается серверу при каждой попытке push этой записи,
	// включая повторы - сервер дедуплицирует по нему.
	IdempotencyKey string `json:"idempotency_key"`
	LastError      string `json:"last_error,omitempty"` // LastError текст последней ошибки отправки
	Version        int64  `json:"version"`
	Timestamp      int64  `json:"timestamp"`
	CreatedAt      int64  `json:"created_at"`
	RetryCount     int    `json:"retry_count"`
}

// ToChange конвертирует запись очереди в SyncChange для отправки
func (p *PendingOperation) ToChange() *SyncChange {
	payload := make(map[string]string, len(p.Payload))
	for k, v := range p.Payload {
		payload[k] = v
	}

	return &SyncChange{
		Payload:    payload,
		ID:         p.ID,
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Operation:  p.Operation,
		Version:    p.Version,
		Timestamp:  p.Timestamp,
	}
}

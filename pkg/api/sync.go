package api

// ChangeRecord представляет одну запись изменения в wire-формате.
// Payload передается как map[string]string - реальные типы полей
// непрозрачны для sync-ядра.
type ChangeRecord struct {
	Payload        map[string]string `json:"payload"`
	ID             string            `json:"id"`
	EntityType     string            `json:"entity_type"`
	EntityID       string            `json:"entity_id"`
	Operation      string            `json:"operation"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Version        int64             `json:"version"`
	Timestamp      int64             `json:"timestamp"`
}

// PushRequest представляет запрос на отправку одного локального изменения
type PushRequest struct {
	Change ChangeRecord `json:"change"`
}

// PushResponse представляет ответ сервера на принятое изменение
type PushResponse struct {
	ServerSeq int64 `json:"server_seq"` // позиция изменения в фиде сервера
	Duplicate bool  `json:"duplicate"`  // true если изменение уже было применено (дедупликация по idempotency key)
}

// PushConflictResponse - тело ответа 409 Conflict.
// Содержит текущее состояние сущности на сервере, чтобы клиент
// мог построить конфликт без дополнительного запроса.
type PushConflictResponse struct {
	Current ChangeRecord `json:"current"`
	Message string       `json:"message"`
}

// PullResponse представляет страницу фида изменений сервера
type PullResponse struct {
	Records    []ChangeRecord `json:"records"`
	NewVersion int64          `json:"new_version"` // watermark для следующего pull
	HasMore    bool           `json:"has_more"`    // остались ли изменения за пределами limit
}

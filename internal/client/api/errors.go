package api

import (
	"fmt"

	"github.com/iudanet/deltasync/pkg/api"
)

// ConflictError возвращается когда сервер отклонил push со статусом 409.
// Несет текущее изменение сущности на сервере, чтобы оркестратор мог
// построить конфликт без дополнительного запроса.
type ConflictError struct {
	Current api.ChangeRecord
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("push rejected: %s (server version %d)", e.Message, e.Current.Version)
}

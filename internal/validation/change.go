package validation

import (
	"strings"

	"github.com/iudanet/deltasync/internal/models"
)

// ValidationResult перечисляет все нарушенные правила, не только первое
type ValidationResult struct {
	Errors []string `json:"errors,omitempty"`
	Valid  bool     `json:"is_valid"`
}

// ValidateChange проверяет SyncChange перед входом в sync-пайплайн.
// Правила: id, entity_type, entity_id непустые; version >= 0;
// операция известна. Чистая функция: без side effects и без panic.
func ValidateChange(change *models.SyncChange) ValidationResult {
	var errs []string

	if change == nil {
		return ValidationResult{Errors: []string{"change must not be nil"}}
	}

	if strings.TrimSpace(change.ID) == "" {
		errs = append(errs, "change id must not be blank")
	}
	if strings.TrimSpace(change.EntityType) == "" {
		errs = append(errs, "entity type must not be blank")
	}
	if strings.TrimSpace(change.EntityID) == "" {
		errs = append(errs, "entity id must not be blank")
	}
	if change.Version < 0 {
		errs = append(errs, "version must not be negative")
	}
	if !change.Operation.Valid() {
		errs = append(errs, "operation must be one of create, update, delete")
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

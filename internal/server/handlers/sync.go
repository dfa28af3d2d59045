package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/middleware"
	"github.com/iudanet/deltasync/internal/server/storage"
	"github.com/iudanet/deltasync/internal/validation"
	"github.com/iudanet/deltasync/pkg/api"
)

// defaultPullLimit используется, если клиент не передал limit
const defaultPullLimit = 100

// maxPullLimit ограничивает размер страницы фида
const maxPullLimit = 1000

// SyncHandler обрабатывает push/pull изменений
type SyncHandler struct {
	logger  *slog.Logger
	changes storage.ChangeStorage
}

// NewSyncHandler создает handler синхронизации
func NewSyncHandler(logger *slog.Logger, changes storage.ChangeStorage) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		changes: changes,
	}
}

// Push обрабатывает POST /api/v1/sync/push.
// Одно изменение за запрос. Ответы:
//   - 200 с PushResponse при принятии или повторе (duplicate=true)
//   - 409 с PushConflictResponse, если версия не строго больше текущей
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	change := recordToChange(req.Change)
	if result := validation.ValidateChange(change); !result.Valid {
		sendError(h.logger, w, strings.Join(result.Errors, "; "), http.StatusBadRequest)
		return
	}
	if req.Change.IdempotencyKey == "" {
		sendError(h.logger, w, "idempotency_key is required", http.StatusBadRequest)
		return
	}

	stored, duplicate, err := h.changes.ApplyChange(r.Context(), userID, change, req.Change.IdempotencyKey)
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			h.respondConflict(w, r, userID, change)
			return
		}
		h.logger.Error("failed to apply change",
			slog.String("user_id", userID),
			slog.String("change_id", change.ID),
			slog.Any("error", err),
		)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("change applied",
		slog.String("user_id", userID),
		slog.String("entity_type", change.EntityType),
		slog.String("entity_id", change.EntityID),
		slog.Int64("server_seq", stored.ServerSeq),
		slog.Bool("duplicate", duplicate),
	)

	sendJSON(h.logger, w, api.PushResponse{
		ServerSeq: stored.ServerSeq,
		Duplicate: duplicate,
	}, http.StatusOK)
}

// respondConflict отвечает 409 с текущим серверным состоянием сущности,
// чтобы клиент построил конфликт без дополнительного запроса
func (h *SyncHandler) respondConflict(w http.ResponseWriter, r *http.Request, userID string, change *models.SyncChange) {
	current, err := h.changes.GetCurrentChange(r.Context(), userID, change.EntityType, change.EntityID)
	if err != nil {
		h.logger.Error("failed to load current change for conflict",
			slog.String("user_id", userID),
			slog.String("entity_id", change.EntityID),
			slog.Any("error", err),
		)
		sendError(h.logger, w, "version conflict", http.StatusConflict)
		return
	}

	sendJSON(h.logger, w, api.PushConflictResponse{
		Current: storedToRecord(current),
		Message: "version is not greater than the current server version",
	}, http.StatusConflict)
}

// Pull обрабатывает GET /api/v1/sync/changes.
// Query-параметры: entity_type (обязателен), since (server_seq watermark,
// по умолчанию 0), limit.
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entityType := r.URL.Query().Get("entity_type")
	if entityType == "" {
		sendError(h.logger, w, "entity_type is required", http.StatusBadRequest)
		return
	}

	since, err := parseQueryInt(r, "since", 0)
	if err != nil || since < 0 {
		sendError(h.logger, w, "since must be a non-negative integer", http.StatusBadRequest)
		return
	}

	limit, err := parseQueryInt(r, "limit", defaultPullLimit)
	if err != nil || limit <= 0 {
		sendError(h.logger, w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	if limit > maxPullLimit {
		limit = maxPullLimit
	}

	feed, err := h.changes.GetChangesSince(r.Context(), userID, entityType, since, int(limit))
	if err != nil {
		h.logger.Error("failed to load changes",
			slog.String("user_id", userID),
			slog.String("entity_type", entityType),
			slog.Any("error", err),
		)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	records := make([]api.ChangeRecord, 0, len(feed.Records))
	for _, stored := range feed.Records {
		records = append(records, storedToRecord(stored))
	}

	sendJSON(h.logger, w, api.PullResponse{
		Records:    records,
		NewVersion: feed.NewVersion,
		HasMore:    feed.HasMore,
	}, http.StatusOK)
}

// parseQueryInt читает целочисленный query-параметр с дефолтом
func parseQueryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// recordToChange конвертирует wire-формат в изменение
func recordToChange(record api.ChangeRecord) *models.SyncChange {
	return &models.SyncChange{
		Payload:    record.Payload,
		ID:         record.ID,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Operation:  models.Operation(record.Operation),
		Version:    record.Version,
		Timestamp:  record.Timestamp,
	}
}

// storedToRecord конвертирует принятую запись лога в wire-формат
func storedToRecord(stored *storage.StoredChange) api.ChangeRecord {
	return api.ChangeRecord{
		Payload:        stored.Change.Payload,
		ID:             stored.Change.ID,
		EntityType:     stored.Change.EntityType,
		EntityID:       stored.Change.EntityID,
		Operation:      string(stored.Change.Operation),
		IdempotencyKey: stored.IdempotencyKey,
		Version:        stored.Change.Version,
		Timestamp:      stored.Change.Timestamp,
	}
}

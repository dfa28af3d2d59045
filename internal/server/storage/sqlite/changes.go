package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/deltasync/internal/models"
	"github.com/iudanet/deltasync/internal/server/storage"
)

// ApplyChange добавляет изменение в append-only лог пользователя.
// Дедупликация по idempotency key проверяется до правила версий:
// повтор push после потерянного ответа - не конфликт.
func (s *Storage) ApplyChange(ctx context.Context, userID string, change *models.SyncChange, idempotencyKey string) (*storage.StoredChange, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Дедупликация
	existing, err := s.getByIdempotencyKey(ctx, tx, userID, idempotencyKey)
	if err != nil && !errors.Is(err, storage.ErrChangeNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	// Правило версий: принимаем только версию строго выше текущей
	var currentVersion sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT version FROM changes
		WHERE user_id = ? AND entity_type = ? AND entity_id = ?
		ORDER BY server_seq DESC
		LIMIT 1
	`, userID, change.EntityType, change.EntityID).Scan(&currentVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to get current version: %w", err)
	}
	if currentVersion.Valid && change.Version <= currentVersion.Int64 {
		return nil, false, storage.ErrVersionConflict
	}

	payload, err := json.Marshal(change.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	receivedAt := time.Now().Unix()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO changes (user_id, change_id, entity_type, entity_id, operation,
			version, timestamp, payload, idempotency_key, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		userID,
		change.ID,
		change.EntityType,
		change.EntityID,
		string(change.Operation),
		change.Version,
		change.Timestamp,
		string(payload),
		idempotencyKey,
		receivedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert change: %w", err)
	}

	serverSeq, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get server seq: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit: %w", err)
	}

	return &storage.StoredChange{
		Change:         *change.Clone(),
		IdempotencyKey: idempotencyKey,
		ServerSeq:      serverSeq,
		ReceivedAt:     receivedAt,
	}, false, nil
}

// GetChangesSince возвращает страницу фида пользователя по типу сущности
func (s *Storage) GetChangesSince(ctx context.Context, userID, entityType string, since int64, limit int) (*storage.ChangeFeed, error) {
	if limit <= 0 {
		limit = 100
	}

	// Запрашиваем limit+1 записей, чтобы вычислить HasMore без count
	rows, err := s.db.QueryContext(ctx, `
		SELECT server_seq, change_id, entity_type, entity_id, operation,
			version, timestamp, payload, idempotency_key, received_at
		FROM changes
		WHERE user_id = ? AND entity_type = ? AND server_seq > ?
		ORDER BY server_seq ASC
		LIMIT ?
	`, userID, entityType, since, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*storage.StoredChange
	for rows.Next() {
		record, err := scanStoredChange(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	feed := &storage.ChangeFeed{NewVersion: since}
	if len(records) > limit {
		feed.HasMore = true
		records = records[:limit]
	}
	feed.Records = records
	if len(records) > 0 {
		feed.NewVersion = records[len(records)-1].ServerSeq
	}

	return feed, nil
}

// GetCurrentChange возвращает последнее принятое изменение сущности
func (s *Storage) GetCurrentChange(ctx context.Context, userID, entityType, entityID string) (*storage.StoredChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT server_seq, change_id, entity_type, entity_id, operation,
			version, timestamp, payload, idempotency_key, received_at
		FROM changes
		WHERE user_id = ? AND entity_type = ? AND entity_id = ?
		ORDER BY server_seq DESC
		LIMIT 1
	`, userID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query current change: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows iteration error: %w", err)
		}
		return nil, storage.ErrChangeNotFound
	}

	return scanStoredChange(rows)
}

// getByIdempotencyKey ищет ранее принятое изменение с тем же ключом
func (s *Storage) getByIdempotencyKey(ctx context.Context, tx *sql.Tx, userID, idempotencyKey string) (*storage.StoredChange, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT server_seq, change_id, entity_type, entity_id, operation,
			version, timestamp, payload, idempotency_key, received_at
		FROM changes
		WHERE user_id = ? AND idempotency_key = ?
	`, userID, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query by idempotency key: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows iteration error: %w", err)
		}
		return nil, storage.ErrChangeNotFound
	}

	return scanStoredChange(rows)
}

func scanStoredChange(rows *sql.Rows) (*storage.StoredChange, error) {
	record := &storage.StoredChange{}
	var operation, payloadJSON string

	err := rows.Scan(
		&record.ServerSeq,
		&record.Change.ID,
		&record.Change.EntityType,
		&record.Change.EntityID,
		&operation,
		&record.Change.Version,
		&record.Change.Timestamp,
		&payloadJSON,
		&record.IdempotencyKey,
		&record.ReceivedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan change: %w", err)
	}

	record.Change.Operation = models.Operation(operation)
	if err := json.Unmarshal([]byte(payloadJSON), &record.Change.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return record, nil
}

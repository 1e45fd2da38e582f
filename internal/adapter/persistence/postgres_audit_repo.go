package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// PostgresAuditRepository implements AuditRepository using PostgreSQL. The
// table is append-only: this adapter exposes no update or delete path.
type PostgresAuditRepository struct {
	db *sql.DB
}

// NewPostgresAuditRepository creates a new PostgreSQL audit repository.
func NewPostgresAuditRepository(db *sql.DB) ports.AuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Create appends a new audit entry.
func (r *PostgresAuditRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (id, ts, user_id, username, action_type, entity_type, entity_id, details, previous_value, new_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	previousJSON, err := marshalNullable(entry.PreviousValue)
	if err != nil {
		return fmt.Errorf("failed to marshal previous value: %w", err)
	}
	newJSON, err := marshalNullable(entry.NewValue)
	if err != nil {
		return fmt.Errorf("failed to marshal new value: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.UserID,
		entry.Username,
		string(entry.ActionType),
		string(entry.EntityType),
		entry.EntityID,
		entry.Details,
		previousJSON,
		newJSON,
	)
	if err != nil {
		return domain.NewStorageError("audit create", err)
	}
	return nil
}

// List retrieves audit entries matching the filter, newest first.
func (r *PostgresAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	query := `
		SELECT id, ts, user_id, username, action_type, entity_type, entity_id, details, previous_value, new_value
		FROM audit_log
	`

	where, args := buildAuditWhere(filter)
	query += where
	query += " ORDER BY ts DESC"

	argIndex := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError("audit list", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var entityID sql.NullString
		var previousJSON, newJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.UserID,
			&entry.Username,
			&entry.ActionType,
			&entry.EntityType,
			&entityID,
			&entry.Details,
			&previousJSON,
			&newJSON,
		)
		if err != nil {
			return nil, domain.NewStorageError("audit list", err)
		}

		entry.EntityID = entityID.String
		if len(previousJSON) > 0 {
			entry.PreviousValue = json.RawMessage(previousJSON)
		}
		if len(newJSON) > 0 {
			entry.NewValue = json.RawMessage(newJSON)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("audit list", err)
	}
	return entries, nil
}

// Count returns the number of entries matching the filter.
func (r *PostgresAuditRepository) Count(ctx context.Context, filter domain.AuditFilter) (int, error) {
	query := `SELECT COUNT(*) FROM audit_log`
	where, args := buildAuditWhere(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.NewStorageError("audit count", err)
	}
	return count, nil
}

func buildAuditWhere(filter domain.AuditFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.ActionType != nil {
		conditions = append(conditions, fmt.Sprintf("action_type = $%d", argIndex))
		args = append(args, string(*filter.ActionType))
		argIndex++
	}
	if filter.EntityType != nil {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", argIndex))
		args = append(args, string(*filter.EntityType))
		argIndex++
	}
	if filter.EntityID != nil {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", argIndex))
		args = append(args, *filter.EntityID)
		argIndex++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("ts >= $%d", argIndex))
		args = append(args, *filter.DateFrom)
		argIndex++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("ts <= $%d", argIndex))
		args = append(args, *filter.DateTo)
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func marshalNullable(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

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

// PostgresOrderRepository implements OrderRepository using PostgreSQL. The
// embedded client snapshot and the activity log are stored as JSONB columns
// on the orders row, keeping the aggregate in one place.
type PostgresOrderRepository struct {
	db *sql.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB) ports.OrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Create saves a new order.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, client, service_type, package_name, notes, status, visp_reference_id, version, created_at, updated_at, activity_log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	clientJSON, err := json.Marshal(order.Client)
	if err != nil {
		return fmt.Errorf("failed to marshal client snapshot: %w", err)
	}
	activityJSON, err := json.Marshal(order.ActivityLog)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		clientJSON,
		order.ServiceType,
		order.PackageName,
		order.Notes,
		string(order.Status),
		order.VISPReferenceID,
		order.Version,
		order.CreatedAt,
		order.UpdatedAt,
		activityJSON,
	)
	if err != nil {
		return domain.NewStorageError("order create", err)
	}
	return nil
}

// FindByID retrieves an order by its ID.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, client, service_type, package_name, notes, status, visp_reference_id, version, created_at, updated_at, activity_log
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("order", id)
		}
		return nil, domain.NewStorageError("order find", err)
	}
	return order, nil
}

// Update persists the order guarded by its version: the row is only written
// when the stored version still matches, and the version is bumped in the
// same statement. A stale version surfaces as a ConflictError.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET client = $3, service_type = $4, package_name = $5, notes = $6, status = $7,
			visp_reference_id = $8, version = version + 1, updated_at = $9, activity_log = $10
		WHERE id = $1 AND version = $2
	`

	clientJSON, err := json.Marshal(order.Client)
	if err != nil {
		return fmt.Errorf("failed to marshal client snapshot: %w", err)
	}
	activityJSON, err := json.Marshal(order.ActivityLog)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.Version,
		clientJSON,
		order.ServiceType,
		order.PackageName,
		order.Notes,
		string(order.Status),
		order.VISPReferenceID,
		order.UpdatedAt,
		activityJSON,
	)
	if err != nil {
		return domain.NewStorageError("order update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("order update", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return domain.NewStorageError("order update", err)
		}
		if exists {
			return domain.NewConflictError("order %s was modified concurrently", order.ID)
		}
		return domain.NewNotFoundError("order", order.ID)
	}

	order.Version++
	return nil
}

// Delete removes an order permanently.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return domain.NewStorageError("order delete", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("order delete", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("order", id)
	}
	return nil
}

// List retrieves orders matching the filter, newest-created first.
func (r *PostgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	query := `
		SELECT id, client, service_type, package_name, notes, status, visp_reference_id, version, created_at, updated_at, activity_log
		FROM orders
	`

	where, args := buildOrderWhere(filter)
	query += where
	query += " ORDER BY created_at DESC"

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
		return nil, domain.NewStorageError("order list", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.NewStorageError("order list", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("order list", err)
	}
	return orders, nil
}

// Count returns the number of orders matching the filter.
func (r *PostgresOrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int, error) {
	query := `SELECT COUNT(*) FROM orders`
	where, args := buildOrderWhere(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.NewStorageError("order count", err)
	}
	return count, nil
}

func buildOrderWhere(filter domain.OrderFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}
	if filter.ClientEmail != nil {
		conditions = append(conditions, fmt.Sprintf("client->>'email' = $%d", argIndex))
		args = append(args, *filter.ClientEmail)
		argIndex++
	}
	if filter.ServiceType != nil {
		conditions = append(conditions, fmt.Sprintf("service_type = $%d", argIndex))
		args = append(args, *filter.ServiceType)
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var clientJSON, activityJSON []byte
	var notes, vispRef sql.NullString

	err := row.Scan(
		&order.ID,
		&clientJSON,
		&order.ServiceType,
		&order.PackageName,
		&notes,
		&order.Status,
		&vispRef,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
		&activityJSON,
	)
	if err != nil {
		return nil, err
	}

	order.Notes = notes.String
	order.VISPReferenceID = vispRef.String

	if err := json.Unmarshal(clientJSON, &order.Client); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client snapshot: %w", err)
	}
	if len(activityJSON) > 0 {
		if err := json.Unmarshal(activityJSON, &order.ActivityLog); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activity log: %w", err)
		}
	}
	return &order, nil
}

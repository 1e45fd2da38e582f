package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// PostgresRequestRepository implements RequestRepository using PostgreSQL.
type PostgresRequestRepository struct {
	db *sql.DB
}

// NewPostgresRequestRepository creates a new PostgreSQL request repository.
func NewPostgresRequestRepository(db *sql.DB) ports.RequestRepository {
	return &PostgresRequestRepository{db: db}
}

const requestColumns = `id, client_id, subject, description, category, status, submitted_at, last_updated_at, resolved_at`

// Create saves a new client request.
func (r *PostgresRequestRepository) Create(ctx context.Context, request *domain.ClientRequest) error {
	query := `
		INSERT INTO client_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.ClientID,
		request.Subject,
		request.Description,
		string(request.Category),
		string(request.Status),
		request.SubmittedAt,
		request.LastUpdatedAt,
		request.ResolvedAt,
	)
	if err != nil {
		return domain.NewStorageError("request create", err)
	}
	return nil
}

// FindByID retrieves a client request by its ID.
func (r *PostgresRequestRepository) FindByID(ctx context.Context, id string) (*domain.ClientRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM client_requests WHERE id = $1`

	var request domain.ClientRequest
	var resolvedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.ClientID,
		&request.Subject,
		&request.Description,
		&request.Category,
		&request.Status,
		&request.SubmittedAt,
		&request.LastUpdatedAt,
		&resolvedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("request", id)
		}
		return nil, domain.NewStorageError("request find", err)
	}
	if resolvedAt.Valid {
		request.ResolvedAt = &resolvedAt.Time
	}
	return &request, nil
}

// Update updates an existing client request.
func (r *PostgresRequestRepository) Update(ctx context.Context, request *domain.ClientRequest) error {
	query := `
		UPDATE client_requests
		SET subject = $2, description = $3, category = $4, status = $5, last_updated_at = $6, resolved_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.Subject,
		request.Description,
		string(request.Category),
		string(request.Status),
		request.LastUpdatedAt,
		request.ResolvedAt,
	)
	if err != nil {
		return domain.NewStorageError("request update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("request update", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("request", request.ID)
	}
	return nil
}

// List retrieves client requests matching the filter, newest first.
func (r *PostgresRequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]*domain.ClientRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM client_requests`
	where, args := buildRequestWhere(filter)
	query += where
	query += " ORDER BY submitted_at DESC"

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
		return nil, domain.NewStorageError("request list", err)
	}
	defer rows.Close()

	var requests []*domain.ClientRequest
	for rows.Next() {
		var request domain.ClientRequest
		var resolvedAt sql.NullTime
		err := rows.Scan(
			&request.ID,
			&request.ClientID,
			&request.Subject,
			&request.Description,
			&request.Category,
			&request.Status,
			&request.SubmittedAt,
			&request.LastUpdatedAt,
			&resolvedAt,
		)
		if err != nil {
			return nil, domain.NewStorageError("request list", err)
		}
		if resolvedAt.Valid {
			request.ResolvedAt = &resolvedAt.Time
		}
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("request list", err)
	}
	return requests, nil
}

// Count returns the number of requests matching the filter.
func (r *PostgresRequestRepository) Count(ctx context.Context, filter domain.RequestFilter) (int, error) {
	query := `SELECT COUNT(*) FROM client_requests`
	where, args := buildRequestWhere(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.NewStorageError("request count", err)
	}
	return count, nil
}

func buildRequestWhere(filter domain.RequestFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argIndex))
		args = append(args, *filter.ClientID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, string(*filter.Category))
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// PostgresSubscriptionRepository implements SubscriptionRepository using
// PostgreSQL.
type PostgresSubscriptionRepository struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepository creates a new PostgreSQL subscription
// repository.
func NewPostgresSubscriptionRepository(db *sql.DB) ports.SubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

const subscriptionColumns = `id, client_id, order_id, service_type, package_name, start_date, renewal_date, status, price_per_cycle, cycle`

// Create saves a new subscription.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		subscription.ID,
		subscription.ClientID,
		subscription.OrderID,
		subscription.ServiceType,
		subscription.PackageName,
		subscription.StartDate,
		subscription.RenewalDate,
		string(subscription.Status),
		subscription.PricePerCycle,
		string(subscription.Cycle),
	)
	if err != nil {
		return domain.NewStorageError("subscription create", err)
	}
	return nil
}

// FindByID retrieves a subscription by its ID.
func (r *PostgresSubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	subscription, err := scanSubscription(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("subscription", id)
		}
		return nil, domain.NewStorageError("subscription find", err)
	}
	return subscription, nil
}

// Update updates an existing subscription.
func (r *PostgresSubscriptionRepository) Update(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET renewal_date = $2, status = $3, price_per_cycle = $4, cycle = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		subscription.ID,
		subscription.RenewalDate,
		string(subscription.Status),
		subscription.PricePerCycle,
		string(subscription.Cycle),
	)
	if err != nil {
		return domain.NewStorageError("subscription update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("subscription update", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("subscription", subscription.ID)
	}
	return nil
}

// List retrieves subscriptions matching the filter, newest first.
func (r *PostgresSubscriptionRepository) List(ctx context.Context, filter domain.SubscriptionFilter) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	where, args := buildSubscriptionWhere(filter)
	query += where
	query += " ORDER BY start_date DESC"

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
		return nil, domain.NewStorageError("subscription list", err)
	}
	defer rows.Close()

	var subscriptions []*domain.Subscription
	for rows.Next() {
		subscription, err := scanSubscription(rows)
		if err != nil {
			return nil, domain.NewStorageError("subscription list", err)
		}
		subscriptions = append(subscriptions, subscription)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("subscription list", err)
	}
	return subscriptions, nil
}

// Count returns the number of subscriptions matching the filter.
func (r *PostgresSubscriptionRepository) Count(ctx context.Context, filter domain.SubscriptionFilter) (int, error) {
	query := `SELECT COUNT(*) FROM subscriptions`
	where, args := buildSubscriptionWhere(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.NewStorageError("subscription count", err)
	}
	return count, nil
}

func buildSubscriptionWhere(filter domain.SubscriptionFilter) (string, []interface{}) {
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
	if filter.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argIndex))
		args = append(args, *filter.OrderID)
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var renewalDate sql.NullTime
	err := row.Scan(
		&subscription.ID,
		&subscription.ClientID,
		&subscription.OrderID,
		&subscription.ServiceType,
		&subscription.PackageName,
		&subscription.StartDate,
		&renewalDate,
		&subscription.Status,
		&subscription.PricePerCycle,
		&subscription.Cycle,
	)
	if err != nil {
		return nil, err
	}
	if renewalDate.Valid {
		subscription.RenewalDate = &renewalDate.Time
	}
	return &subscription, nil
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL.
type PostgresInvoiceRepository struct {
	db *sql.DB
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository.
func NewPostgresInvoiceRepository(db *sql.DB) ports.InvoiceRepository {
	return &PostgresInvoiceRepository{db: db}
}

const invoiceColumns = `id, order_id, client_id, client_name, invoice_number, issue_date, due_date, sub_total, tax_amount, amount, status`

// Create saves a new invoice.
func (r *PostgresInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.OrderID,
		invoice.ClientID,
		invoice.ClientName,
		invoice.InvoiceNumber,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.SubTotal,
		invoice.TaxAmount,
		invoice.Amount,
		string(invoice.Status),
	)
	if err != nil {
		return domain.NewStorageError("invoice create", err)
	}
	return nil
}

// FindByID retrieves an invoice by its ID.
func (r *PostgresInvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("invoice", id)
		}
		return nil, domain.NewStorageError("invoice find", err)
	}
	return invoice, nil
}

// Update updates an existing invoice.
func (r *PostgresInvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		UPDATE invoices
		SET due_date = $2, sub_total = $3, tax_amount = $4, amount = $5, status = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.DueDate,
		invoice.SubTotal,
		invoice.TaxAmount,
		invoice.Amount,
		string(invoice.Status),
	)
	if err != nil {
		return domain.NewStorageError("invoice update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("invoice update", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("invoice", invoice.ID)
	}
	return nil
}

// List retrieves invoices matching the filter, newest first.
func (r *PostgresInvoiceRepository) List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	where, args := buildInvoiceWhere(filter)
	query += where
	query += " ORDER BY issue_date DESC"

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
		return nil, domain.NewStorageError("invoice list", err)
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, domain.NewStorageError("invoice list", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("invoice list", err)
	}
	return invoices, nil
}

// Count returns the number of invoices matching the filter.
func (r *PostgresInvoiceRepository) Count(ctx context.Context, filter domain.InvoiceFilter) (int, error) {
	query := `SELECT COUNT(*) FROM invoices`
	where, args := buildInvoiceWhere(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.NewStorageError("invoice count", err)
	}
	return count, nil
}

func buildInvoiceWhere(filter domain.InvoiceFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argIndex))
		args = append(args, *filter.ClientID)
		argIndex++
	}
	if filter.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argIndex))
		args = append(args, *filter.OrderID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var clientName sql.NullString
	err := row.Scan(
		&invoice.ID,
		&invoice.OrderID,
		&invoice.ClientID,
		&clientName,
		&invoice.InvoiceNumber,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.SubTotal,
		&invoice.TaxAmount,
		&invoice.Amount,
		&invoice.Status,
	)
	if err != nil {
		return nil, err
	}
	invoice.ClientName = clientName.String
	return &invoice, nil
}

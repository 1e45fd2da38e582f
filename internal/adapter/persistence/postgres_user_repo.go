package persistence

import (
	"context"
	"database/sql"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// PostgresUserRepository implements UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository.
func NewPostgresUserRepository(db *sql.DB) ports.UserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, password_hash, role, name, contact_number, address, id_number, created_at, updated_at`

// Create saves a new user account.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.Name,
		user.ContactNumber,
		user.Address,
		user.IDNumber,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return domain.NewStorageError("user create", err)
	}
	return nil
}

// FindByID retrieves a user by its ID.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByUsername retrieves a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username), username)
}

// Update updates an existing user account.
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, password_hash = $3, role = $4, name = $5,
			contact_number = $6, address = $7, id_number = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.Name,
		user.ContactNumber,
		user.Address,
		user.IDNumber,
		user.UpdatedAt,
	)
	if err != nil {
		return domain.NewStorageError("user update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("user update", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("user", user.ID)
	}
	return nil
}

// Delete removes a user account permanently.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.NewStorageError("user delete", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.NewStorageError("user delete", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("user", id)
	}
	return nil
}

// List retrieves a page of user accounts, newest first.
func (r *PostgresUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, domain.NewStorageError("user list", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUserColumns(rows, &user); err != nil {
			return nil, domain.NewStorageError("user list", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("user list", err)
	}
	return users, nil
}

// Count returns the total number of user accounts.
func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, domain.NewStorageError("user count", err)
	}
	return count, nil
}

func (r *PostgresUserRepository) scanUser(row *sql.Row, key string) (*domain.User, error) {
	var user domain.User
	if err := scanUserColumns(row, &user); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("user", key)
		}
		return nil, domain.NewStorageError("user find", err)
	}
	return &user, nil
}

func scanUserColumns(row rowScanner, user *domain.User) error {
	var name, contactNumber, address, idNumber sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&name,
		&contactNumber,
		&address,
		&idNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	user.Name = name.String
	user.ContactNumber = contactNumber.String
	user.Address = address.String
	user.IDNumber = idNumber.String
	return nil
}

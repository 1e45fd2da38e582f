package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// PostgresBillingSettingsRepository persists the single billing settings row
// as a JSONB document keyed by a fixed id.
type PostgresBillingSettingsRepository struct {
	db *sql.DB
}

// NewPostgresBillingSettingsRepository creates a new PostgreSQL billing
// settings repository.
func NewPostgresBillingSettingsRepository(db *sql.DB) ports.BillingSettingsRepository {
	return &PostgresBillingSettingsRepository{db: db}
}

// Get returns the stored settings, falling back to the defaults when no row
// has been saved yet.
func (r *PostgresBillingSettingsRepository) Get(ctx context.Context) (domain.BillingSettings, error) {
	var settingsJSON []byte
	err := r.db.QueryRowContext(ctx, `SELECT settings FROM billing_settings WHERE id = 1`).Scan(&settingsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DefaultBillingSettings(), nil
		}
		return domain.BillingSettings{}, domain.NewStorageError("billing settings get", err)
	}

	var settings domain.BillingSettings
	if err := json.Unmarshal(settingsJSON, &settings); err != nil {
		return domain.BillingSettings{}, fmt.Errorf("failed to unmarshal billing settings: %w", err)
	}
	return settings, nil
}

// Save replaces the stored settings.
func (r *PostgresBillingSettingsRepository) Save(ctx context.Context, settings domain.BillingSettings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal billing settings: %w", err)
	}

	query := `
		INSERT INTO billing_settings (id, settings)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings
	`
	if _, err := r.db.ExecContext(ctx, query, settingsJSON); err != nil {
		return domain.NewStorageError("billing settings save", err)
	}
	return nil
}

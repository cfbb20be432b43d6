package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
)

// settingsKey is the single row key; the selection is global state.
const settingsKey = "wallet_selection"

// SettingsRepo implements storage.SettingsRepository using PostgreSQL.
// Saves raise a NOTIFY on the selection channel so other processes can
// drop their cached selection.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a new PostgreSQL settings repository.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Selection retrieves the current wallet selection. A missing row is an
// empty selection, not an error.
func (r *SettingsRepo) Selection(ctx context.Context) (*domain.Selection, error) {
	query := `
		SELECT wallet_id, currency_code
		FROM settings
		WHERE key = $1
	`

	var row struct {
		WalletID     string `db:"wallet_id"`
		CurrencyCode string `db:"currency_code"`
	}
	err := r.db.GetContext(ctx, &row, query, settingsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Selection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}
	return &domain.Selection{WalletID: row.WalletID, CurrencyCode: row.CurrencyCode}, nil
}

// SaveSelection saves/updates the wallet selection and notifies
// listeners.
func (r *SettingsRepo) SaveSelection(ctx context.Context, sel *domain.Selection) error {
	query := `
		INSERT INTO settings (key, wallet_id, currency_code, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE SET
			wallet_id = EXCLUDED.wallet_id,
			currency_code = EXCLUDED.currency_code,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, settingsKey, sel.WalletID, sel.CurrencyCode)
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, SelectionChannel, sel.WalletID)
	if err != nil {
		return fmt.Errorf("failed to notify selection change: %w", err)
	}
	return nil
}

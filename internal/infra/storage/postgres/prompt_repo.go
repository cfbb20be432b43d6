package postgres

import (
	"context"
	"fmt"
)

// PromptRepo implements storage.PromptShownRepository using PostgreSQL.
type PromptRepo struct {
	db *DB
}

// NewPromptRepo creates a new PostgreSQL prompt-shown repository.
func NewPromptRepo(db *DB) *PromptRepo {
	return &PromptRepo{db: db}
}

// MarkShown records a prompt as shown. The insert is the test: a
// conflict means it was already shown.
func (r *PromptRepo) MarkShown(ctx context.Context, kind, walletID string) (bool, error) {
	query := `
		INSERT INTO prompts_shown (kind, wallet_id, shown_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (kind, wallet_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, kind, walletID)
	if err != nil {
		return false, fmt.Errorf("failed to mark prompt shown: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted == 1, nil
}

// Clear forgets all shown prompts.
func (r *PromptRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prompts_shown`); err != nil {
		return fmt.Errorf("failed to clear prompts: %w", err)
	}
	return nil
}

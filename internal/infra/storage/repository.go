package storage

import (
	"context"
	"errors"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
)

var (
	// ErrNotFound is returned when a record doesn't exist
	ErrNotFound = errors.New("record not found")
)

// DispatchRepository handles dispatch audit storage operations
type DispatchRepository interface {
	// Save saves a dispatch record
	Save(ctx context.Context, record *domain.DispatchRecord) error

	// GetByID retrieves a dispatch record by ID
	GetByID(ctx context.Context, id string) (*domain.DispatchRecord, error)

	// Recent retrieves the most recent dispatch records, newest first
	Recent(ctx context.Context, limit int) ([]*domain.DispatchRecord, error)

	// CountByOutcome returns the dispatch count per outcome
	CountByOutcome(ctx context.Context) (map[domain.DispatchOutcome]int, error)

	// DeleteOlderThan deletes records created before the cutoff (for retention)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsRepository handles the selected-wallet context
type SettingsRepository interface {
	// Selection retrieves the current wallet selection
	Selection(ctx context.Context) (*domain.Selection, error)

	// SaveSelection saves/updates the wallet selection
	SaveSelection(ctx context.Context, sel *domain.Selection) error
}

// PromptShownRepository remembers which wallets saw a once-only prompt
type PromptShownRepository interface {
	// MarkShown marks a prompt shown; true on the first marking
	MarkShown(ctx context.Context, kind, walletID string) (bool, error)

	// Clear forgets all shown prompts
	Clear(ctx context.Context) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage"
)

// DispatchRepo implements storage.DispatchRepository using PostgreSQL.
type DispatchRepo struct {
	db *DB
}

// NewDispatchRepo creates a new PostgreSQL dispatch repository.
func NewDispatchRepo(db *DB) *DispatchRepo {
	return &DispatchRepo{db: db}
}

type dispatchRow struct {
	ID         string    `db:"id"`
	LinkType   string    `db:"link_type"`
	Outcome    string    `db:"outcome"`
	Error      string    `db:"error"`
	DurationMS int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *dispatchRow) toDomain() *domain.DispatchRecord {
	return &domain.DispatchRecord{
		ID:        r.ID,
		LinkType:  domain.LinkType(r.LinkType),
		Outcome:   domain.DispatchOutcome(r.Outcome),
		Error:     r.Error,
		Duration:  time.Duration(r.DurationMS) * time.Millisecond,
		CreatedAt: r.CreatedAt,
	}
}

// Save saves a dispatch record to the database.
func (r *DispatchRepo) Save(ctx context.Context, record *domain.DispatchRecord) error {
	query := `
		INSERT INTO dispatches (id, link_type, outcome, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			error = EXCLUDED.error,
			duration_ms = EXCLUDED.duration_ms
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		string(record.LinkType),
		string(record.Outcome),
		record.Error,
		record.Duration.Milliseconds(),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save dispatch: %w", err)
	}
	return nil
}

// GetByID retrieves a dispatch record by ID.
func (r *DispatchRepo) GetByID(ctx context.Context, id string) (*domain.DispatchRecord, error) {
	query := `
		SELECT id, link_type, outcome, error, duration_ms, created_at
		FROM dispatches
		WHERE id = $1
	`

	var row dispatchRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch: %w", err)
	}
	return row.toDomain(), nil
}

// Recent retrieves the most recent dispatch records, newest first.
func (r *DispatchRepo) Recent(ctx context.Context, limit int) ([]*domain.DispatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, link_type, outcome, error, duration_ms, created_at
		FROM dispatches
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []dispatchRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list dispatches: %w", err)
	}
	records := make([]*domain.DispatchRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toDomain()
	}
	return records, nil
}

// CountByOutcome returns the dispatch count per outcome.
func (r *DispatchRepo) CountByOutcome(ctx context.Context) (map[domain.DispatchOutcome]int, error) {
	query := `
		SELECT outcome, COUNT(*) AS count
		FROM dispatches
		GROUP BY outcome
	`

	var rows []struct {
		Outcome string `db:"outcome"`
		Count   int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count dispatches: %w", err)
	}
	counts := make(map[domain.DispatchOutcome]int, len(rows))
	for _, row := range rows {
		counts[domain.DispatchOutcome(row.Outcome)] = row.Count
	}
	return counts, nil
}

// DeleteOlderThan deletes records created before the cutoff.
func (r *DispatchRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dispatches WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune dispatches: %w", err)
	}
	return res.RowsAffected()
}

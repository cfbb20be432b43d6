package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage"
)

// MemoryStorage is the in-process store used when no database is
// configured.
type MemoryStorage struct {
	dispatches map[string]*domain.DispatchRecord
	selection  *domain.Selection
	prompts    map[string]bool
	mu         sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		dispatches: make(map[string]*domain.DispatchRecord),
		prompts:    make(map[string]bool),
	}
}

// -----------------------------------------------------------------------------
// Dispatch Repository
// -----------------------------------------------------------------------------

type DispatchRepo struct {
	store *MemoryStorage
}

func NewDispatchRepo(store *MemoryStorage) *DispatchRepo {
	return &DispatchRepo{store: store}
}

func (r *DispatchRepo) Save(ctx context.Context, record *domain.DispatchRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *record
	r.store.dispatches[record.ID] = &clone
	return nil
}

func (r *DispatchRepo) GetByID(ctx context.Context, id string) (*domain.DispatchRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	record, ok := r.store.dispatches[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *DispatchRepo) Recent(ctx context.Context, limit int) ([]*domain.DispatchRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	records := make([]*domain.DispatchRecord, 0, len(r.store.dispatches))
	for _, record := range r.store.dispatches {
		clone := *record
		records = append(records, &clone)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *DispatchRepo) CountByOutcome(ctx context.Context) (map[domain.DispatchOutcome]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	counts := make(map[domain.DispatchOutcome]int)
	for _, record := range r.store.dispatches {
		counts[record.Outcome]++
	}
	return counts, nil
}

func (r *DispatchRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for id, record := range r.store.dispatches {
		if record.CreatedAt.Before(cutoff) {
			delete(r.store.dispatches, id)
			deleted++
		}
	}
	return deleted, nil
}

// -----------------------------------------------------------------------------
// Settings Repository
// -----------------------------------------------------------------------------

type SettingsRepo struct {
	store *MemoryStorage
}

func NewSettingsRepo(store *MemoryStorage) *SettingsRepo {
	return &SettingsRepo{store: store}
}

func (r *SettingsRepo) Selection(ctx context.Context) (*domain.Selection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.selection == nil {
		// No selection yet; dispatches fall back to empty context.
		return &domain.Selection{}, nil
	}
	clone := *r.store.selection
	return &clone, nil
}

func (r *SettingsRepo) SaveSelection(ctx context.Context, sel *domain.Selection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *sel
	r.store.selection = &clone
	return nil
}

// -----------------------------------------------------------------------------
// Prompt-Shown Repository
// -----------------------------------------------------------------------------

type PromptRepo struct {
	store *MemoryStorage
}

func NewPromptRepo(store *MemoryStorage) *PromptRepo {
	return &PromptRepo{store: store}
}

func (r *PromptRepo) MarkShown(ctx context.Context, kind, walletID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := kind + ":" + walletID
	if r.store.prompts[key] {
		return false, nil
	}
	r.store.prompts[key] = true
	return true, nil
}

func (r *PromptRepo) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.prompts = make(map[string]bool)
	return nil
}

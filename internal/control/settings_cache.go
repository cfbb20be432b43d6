package control

import (
	"context"
	"sync"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage"
)

// CachedSettings fronts the settings repository with a process-local
// cache. Invalidate is hooked to the Postgres selection listener so a
// save in any process drops every cache.
type CachedSettings struct {
	repo   storage.SettingsRepository
	mu     sync.Mutex
	cached *domain.Selection
}

func NewCachedSettings(repo storage.SettingsRepository) *CachedSettings {
	return &CachedSettings{repo: repo}
}

// Selection returns the cached selection, loading it on a miss.
func (c *CachedSettings) Selection(ctx context.Context) (*domain.Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil {
		clone := *c.cached
		return &clone, nil
	}
	sel, err := c.repo.Selection(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = sel
	clone := *sel
	return &clone, nil
}

// SaveSelection writes through and refreshes the cache.
func (c *CachedSettings) SaveSelection(ctx context.Context, sel *domain.Selection) error {
	if err := c.repo.SaveSelection(ctx, sel); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *sel
	c.cached = &clone
	return nil
}

// Invalidate drops the cached selection.
func (c *CachedSettings) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}

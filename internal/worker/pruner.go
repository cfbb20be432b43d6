package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/infra/storage"
)

// Pruner deletes old dispatch records based on retention policy.
type Pruner struct {
	retention  time.Duration
	dispatches storage.DispatchRepository
	log        *slog.Logger
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, dispatches storage.DispatchRepository, log *slog.Logger) *Pruner {
	if log == nil {
		log = slog.Default()
	}
	return &Pruner{
		retention:  retention,
		dispatches: dispatches,
		log:        log,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of the retention period, clamped to [1m, 1h]
	interval := min(p.retention/10, time.Hour)
	interval = max(interval, time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)
	deleted, err := p.dispatches.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.log.Error("failed to prune dispatch records", "error", err)
		return
	}
	if deleted > 0 {
		p.log.Info("pruned dispatch records", "deleted", deleted, "cutoff", cutoff)
	}
}

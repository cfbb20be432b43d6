package health

import (
	"context"
	"sync"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/infra/storage"
)

// Check probes one dependency; nil means healthy.
type Check func(ctx context.Context) error

// errorRateDegraded is the dispatch error share that marks the system
// degraded.
const errorRateDegraded = 0.25

// Monitor aggregates health status from registered dependency checks
// and the dispatch audit log.
type Monitor struct {
	checks     map[string]Check
	dispatches storage.DispatchRepository
	lastCheck  time.Time
	lastReport HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor. The dispatch repository is
// optional; without it the report carries no outcome summary.
func NewMonitor(dispatches storage.DispatchRepository) *Monitor {
	return &Monitor{
		checks:     make(map[string]Check),
		dispatches: dispatches,
	}
}

// Register adds a named dependency check.
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// CheckHealth performs a health check across all registered
// dependencies.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks (max once per 10s) to avoid hammering dependencies
	if time.Since(m.lastCheck) < 10*time.Second && m.lastReport.Components != nil {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.checks)),
	}

	for name, check := range m.checks {
		component := ComponentHealth{Name: name, Status: StatusHealthy}
		if err := check(ctx); err != nil {
			component.Status = StatusCritical
			component.Error = err.Error()
			report.SystemStatus = StatusCritical
		}
		report.Components[name] = component
	}

	if m.dispatches != nil {
		if counts, err := m.dispatches.CountByOutcome(ctx); err == nil {
			for outcome, count := range counts {
				report.Dispatches.Total += count
				if outcome == domain.OutcomeError {
					report.Dispatches.Errors += count
				}
			}
			if report.Dispatches.Total > 0 {
				report.Dispatches.ErrorRate = float64(report.Dispatches.Errors) / float64(report.Dispatches.Total)
			}
			if report.SystemStatus == StatusHealthy && report.Dispatches.ErrorRate > errorRateDegraded {
				report.SystemStatus = StatusDegraded
			}
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

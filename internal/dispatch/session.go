package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	"github.com/orbitwallet/linkdispatch/internal/events"
)

// SessionState is the dispatch guard state.
type SessionState string

const (
	StateIdle        SessionState = "idle"
	StateDispatching SessionState = "dispatching"
)

// validTransitions defines allowed session state transitions.
var validTransitions = map[SessionState][]SessionState{
	StateIdle:        {StateDispatching},
	StateDispatching: {StateIdle},
}

func canTransition(from, to SessionState) bool {
	for _, target := range validTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Session owns the process-wide scan-enabled flag and enforces the
// single-dispatch-at-a-time discipline. Scan state changes are mirrored
// to the application through lifecycle events.
type Session struct {
	mu          sync.Mutex
	state       SessionState
	scanEnabled bool
	emitter     events.Emitter
	log         *slog.Logger
}

func NewSession(emitter events.Emitter, log *slog.Logger) *Session {
	if emitter == nil {
		emitter = events.NewLogEmitter(log)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		state:       StateIdle,
		scanEnabled: true,
		emitter:     emitter,
		log:         log,
	}
}

// Begin moves the session to Dispatching and disables scanning. It
// returns false when a dispatch is already in flight.
func (s *Session) Begin(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canTransition(s.state, StateDispatching) {
		return false
	}
	s.state = StateDispatching
	s.setScanEnabledLocked(ctx, false)
	return true
}

// Finish returns the session to Idle. Scan state is left as the flow
// set it; terminal paths re-enable scanning explicitly.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canTransition(s.state, StateIdle) {
		s.log.Warn("session finish outside dispatch", "state", s.state)
		return
	}
	s.state = StateIdle
}

// ScanEnabled reports whether new scan events are currently accepted.
func (s *Session) ScanEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanEnabled
}

// State returns the current guard state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DisableScan clears the scan-enabled flag, emitting DISABLE_SCAN on
// the transition.
func (s *Session) DisableScan(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setScanEnabledLocked(ctx, false)
}

// EnableScan sets the scan-enabled flag, emitting ENABLE_SCAN on the
// transition.
func (s *Session) EnableScan(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setScanEnabledLocked(ctx, true)
}

func (s *Session) setScanEnabledLocked(ctx context.Context, enabled bool) {
	if s.scanEnabled == enabled {
		return
	}
	s.scanEnabled = enabled
	eventType := domain.EventDisableScan
	if enabled {
		eventType = domain.EventEnableScan
	}
	if err := s.emitter.Emit(ctx, events.New(eventType, nil)); err != nil {
		s.log.Warn("lifecycle event emit failed", "type", eventType, "error", err)
	}
}

// Package events delivers dispatcher lifecycle events to the
// surrounding application.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
)

// Emitter defines the interface for emitting dispatcher lifecycle events
type Emitter interface {
	// Emit sends a single event
	Emit(ctx context.Context, event *domain.Event) error

	// Close closes the emitter connection
	Close() error
}

// LogEmitter writes events to the structured log. It is the default
// sink when no external transport is configured.
type LogEmitter struct {
	log *slog.Logger
}

func NewLogEmitter(log *slog.Logger) *LogEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Emit(ctx context.Context, event *domain.Event) error {
	e.log.Debug("lifecycle event", "type", event.Type, "payload", event.Payload)
	return nil
}

func (e *LogEmitter) Close() error { return nil }

// MultiEmitter fans one event out to several sinks. The first error is
// returned after all sinks were attempted.
type MultiEmitter struct {
	sinks []Emitter
}

func NewMultiEmitter(sinks ...Emitter) *MultiEmitter {
	return &MultiEmitter{sinks: sinks}
}

func (e *MultiEmitter) Emit(ctx context.Context, event *domain.Event) error {
	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *MultiEmitter) Close() error {
	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New builds a stamped event.
func New(eventType domain.EventType, payload map[string]any) *domain.Event {
	return &domain.Event{
		Type:      eventType,
		Payload:   payload,
		EmittedAt: time.Now(),
	}
}

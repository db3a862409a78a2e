package services

import (
	"context"
	"log/slog"
	"sync"

	"panini/internal/amqp"
	"panini/internal/metrics"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, event amqp.LedgerEvent) error
}

// Events fans a ledger change out to in-process listeners (cache invalidation)
// and to the broker. Publishing is best effort: the change is already committed.
type Events struct {
	publisher EventPublisher
	metrics   *metrics.Metrics

	mu        sync.RWMutex
	listeners []func()
}

// NewEvents accepts a nil publisher when no broker is configured.
func NewEvents(publisher EventPublisher, m *metrics.Metrics) *Events {
	return &Events{publisher: publisher, metrics: m}
}

// OnChange registers fn to run after every ledger change.
func (e *Events) OnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Emit notifies listeners, then publishes the event when a broker is configured.
func (e *Events) Emit(ctx context.Context, kind amqp.EventKind, entityID string) {
	if e == nil {
		return
	}

	e.mu.RLock()
	listeners := e.listeners
	e.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}

	if e.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping ledger event",
			"kind", kind, "entity_id", entityID)
		return
	}

	err := e.publisher.Publish(ctx, amqp.NewLedgerEvent(kind, entityID))
	e.metrics.EventPublished(string(kind), err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind, "entity_id", entityID, "error", err)
	}
}

// Package bus is the in-process publish mechanism for journal events.
//
// Publish persists the event to the backing log before any subscriber
// runs, so a misbehaving handler can never un-persist an event. Handlers
// run synchronously in subscription order; a failing handler does not
// stop later handlers or later publishes.
package bus

import (
	"fmt"
	"strings"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/sessionlog"
)

// Handler receives each published event exactly once.
type Handler func(journal.Event) error

// SubscriberError reports handler failures for one published event. The
// event was durably persisted before any handler ran; callers usually
// log it and continue.
type SubscriberError struct {
	EventID string
	Errs    []error
}

// Error implements the error interface.
func (e *SubscriberError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("event %s: %d subscriber(s) failed: %s", e.EventID, len(e.Errs), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual handler errors.
func (e *SubscriberError) Unwrap() []error {
	return e.Errs
}

// Bus fans events out to subscribers after persisting them.
//
// Not safe for concurrent use; one CLI invocation runs a single
// execution path.
type Bus struct {
	log      *sessionlog.Log
	handlers []Handler
}

// New returns a Bus persisting to the given event log.
func New(log *sessionlog.Log) *Bus {
	return &Bus{log: log}
}

// Subscribe registers a handler. Handlers are invoked in subscription
// order, never by priority.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish appends the event to the log, then notifies every current
// subscriber in order.
//
// A persistence failure is fatal and returned before any handler runs.
// Handler failures are collected into a *SubscriberError returned after
// all handlers ran; the event stays persisted regardless.
func (b *Bus) Publish(e journal.Event) error {
	if err := b.log.Append(e); err != nil {
		return fmt.Errorf("publish %s: %w", e.Topic, err)
	}

	var errs []error
	for _, h := range b.handlers {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &SubscriberError{EventID: e.ID, Errs: errs}
	}
	return nil
}

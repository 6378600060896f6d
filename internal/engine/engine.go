// Package engine translates commands into state mutations and journal
// events, and reconstructs state from the event log by replay.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/kuhul/internal/bus"
	"github.com/roach88/kuhul/internal/id"
	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/state"
)

// Engine is the sole authority over the state projection. It dispatches
// on a command's op, mutates state, and emits causally-linked events
// through the bus.
//
// Command application is atomic: the event is durably persisted first
// and the mutation is committed only after the persist succeeds, so a
// failed append leaves neither a mutation nor an event behind.
//
// Not safe for concurrent use; exactly one Engine exists per invocation
// and there is a single execution path (no goroutines, no suspension).
type Engine struct {
	bus    *bus.Bus
	state  *state.State
	ids    id.Generator
	logger *slog.Logger
	now    func() int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for subscriber-failure warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNow overrides the millisecond clock. Tests use a fixed clock to
// make emitted events byte-for-byte reproducible.
func WithNow(now func() int64) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given bus, state, and id generator.
func New(b *bus.Bus, st *state.State, ids id.Generator, opts ...Option) *Engine {
	e := &Engine{
		bus:    b,
		state:  st,
		ids:    ids,
		logger: slog.Default(),
		now:    func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the live projection.
func (e *Engine) State() *state.State {
	return e.state
}

// ApplyCommand validates and applies one command, emitting the events
// that describe what happened.
//
// An unrecognized op or malformed args rejects the command before any
// mutation or emission. A persistence failure aborts with no mutation.
func (e *Engine) ApplyCommand(cmd journal.Command) error {
	switch cmd.Op {
	case journal.OpCreate:
		return e.applyCreate(cmd)
	case journal.OpApplyTheme:
		return e.applyTheme(cmd)
	case journal.OpExport:
		return e.applyExport(cmd)
	case journal.OpChat:
		// State is unaffected; the chat collaborator emits the outcome
		// event (ai.chat.completed / ai.chat.failed) via EmitEvent.
		return nil
	default:
		return &CommandError{Code: CodeUnrecognizedOp, Op: cmd.Op, Message: "unrecognized operation"}
	}
}

func (e *Engine) applyCreate(cmd journal.Command) error {
	rawType, ok := cmd.Args["component"].(string)
	if !ok || rawType == "" {
		return invalidArgf(cmd.Op, "args.component must be a non-empty string")
	}
	compType := state.ComponentType(rawType)
	if !compType.Valid() {
		return invalidArgf(cmd.Op, "unknown component type %q", rawType)
	}

	props := map[string]any{}
	if rawProps, present := cmd.Args["props"]; present {
		m, ok := rawProps.(map[string]any)
		if !ok {
			return invalidArgf(cmd.Op, "args.props must be an object")
		}
		props = m
	}

	comp := state.Component{
		ID:    e.ids.Next(journal.KindComponent, cmd.TsMs),
		Type:  compType,
		Props: props,
	}
	if _, err := e.emit(cmd.ID, journal.ComponentCreated{Component: comp}); err != nil {
		return err
	}
	e.state.AppendComponent(comp)
	return nil
}

func (e *Engine) applyTheme(cmd journal.Command) error {
	rawName, ok := cmd.Args["name"].(string)
	if !ok || rawName == "" {
		return invalidArgf(cmd.Op, "args.name must be a non-empty string")
	}
	theme := state.Theme(rawName)
	if !theme.Valid() {
		return invalidArgf(cmd.Op, "unknown theme %q", rawName)
	}

	if _, err := e.emit(cmd.ID, journal.ThemeChanged{To: theme}); err != nil {
		return err
	}
	e.state.SetTheme(theme)
	return nil
}

func (e *Engine) applyExport(cmd journal.Command) error {
	hint, ok := cmd.Args["hint"].(string)
	if !ok {
		return invalidArgf(cmd.Op, "args.hint must be a string")
	}
	// Informational only: no state change.
	_, err := e.emit(cmd.ID, journal.ExportRequested{Hint: hint})
	return err
}

// EmitEvent records an event whose cause is a command or a prior event.
// Any collaborator may call this; it is how externally-resolved results
// (chat completions) enter the journal without a state mutation.
func (e *Engine) EmitEvent(causedBy string, p journal.Payload) (journal.Event, error) {
	return e.emit(causedBy, p)
}

// StateSnapshot emits a state.snapshot event carrying the full current
// serialized state. Auditing only; replay never depends on it.
func (e *Engine) StateSnapshot(causedBy string) (journal.Event, error) {
	return e.emit(causedBy, journal.StateSnapshot{State: e.state.Snapshot()})
}

// emit builds an event with a fresh id and publishes it. Subscriber
// failures are logged and swallowed here: the event is already durable
// and handler failures are non-fatal to the publisher.
func (e *Engine) emit(causedBy string, p journal.Payload) (journal.Event, error) {
	tsMs := e.now()
	evt, err := journal.NewEvent(e.ids.Next(journal.KindEvent, tsMs), tsMs, causedBy, p)
	if err != nil {
		return journal.Event{}, err
	}
	if err := e.bus.Publish(evt); err != nil {
		var subErr *bus.SubscriberError
		if errors.As(err, &subErr) {
			e.logger.Warn("event subscribers failed",
				"event_id", evt.ID,
				"topic", string(evt.Topic),
				"error", subErr.Error(),
			)
			return evt, nil
		}
		return journal.Event{}, err
	}
	return evt, nil
}

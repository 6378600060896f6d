// Package journal defines the wire records of the session journal: the
// commands a user issued and the events describing what actually happened.
//
// Both record kinds are immutable once created. Commands are persisted to
// a per-session audit log that is never read back; events are persisted to
// the per-session event log, which is the single source of truth for
// replay. Every event names the command (or prior event) that caused it,
// forming an acyclic causal chain.
package journal

import (
	"encoding/json"
	"fmt"
)

// Record type discriminators stored in the "@type" field.
const (
	TypeCommand = "kuhul.command"
	TypeEvent   = "kuhul.event"
)

// Version is the journal schema version stored in the "@v" field. It
// doubles as the CLI version string.
const Version = "1.0.0"

// Identifier namespaces handed to the id generator.
const (
	KindCommand   = "cmd"
	KindEvent     = "evt"
	KindComponent = "cmp"
)

// Op names the operations the command engine recognizes.
type Op string

const (
	// OpCreate creates a UI component.
	OpCreate Op = "ui.create"
	// OpApplyTheme applies a theme.
	OpApplyTheme Op = "ui.theme.apply"
	// OpExport requests an SVG export of the current state.
	OpExport Op = "svg.export"
	// OpChat requests a chat completion from an external provider.
	OpChat Op = "ai.chat"
)

// Topic classifies an event. Replay folds only TopicStateChanged; every
// other topic is informational.
type Topic string

const (
	// TopicStateChanged carries a full state mutation (component created
	// or theme changed). The only topic replay depends on.
	TopicStateChanged Topic = "state.changed"
	// TopicStateSnapshot carries the full serialized state for auditing.
	// Replay must never consult it.
	TopicStateSnapshot Topic = "state.snapshot"
	// TopicExportRequested records an export request. No state change.
	TopicExportRequested Topic = "svg.export.requested"
	// TopicChatCompleted records a successful chat completion.
	TopicChatCompleted Topic = "ai.chat.completed"
	// TopicChatFailed records a failed chat completion.
	TopicChatFailed Topic = "ai.chat.failed"
)

// Source describes the provenance of a command. Free-form; the engine
// does not validate it.
type Source struct {
	Kind    string `json:"kind"`
	Who     string `json:"who"`
	Session string `json:"session"`
}

// Command is an intention to change state or trigger an external effect.
type Command struct {
	Type   string         `json:"@type"`
	V      string         `json:"@v"`
	ID     string         `json:"id"`
	TsMs   int64          `json:"ts_ms"`
	Source Source         `json:"source"`
	Op     Op             `json:"op"`
	Args   map[string]any `json:"args"`
}

// NewCommand builds a command record with the standard envelope fields.
func NewCommand(id string, tsMs int64, source Source, op Op, args map[string]any) Command {
	if args == nil {
		args = map[string]any{}
	}
	return Command{
		Type:   TypeCommand,
		V:      Version,
		ID:     id,
		TsMs:   tsMs,
		Source: source,
		Op:     op,
		Args:   args,
	}
}

// Event is an immutable fact that something happened, always caused by
// exactly one command or prior event.
type Event struct {
	Type     string          `json:"@type"`
	V        string          `json:"@v"`
	ID       string          `json:"id"`
	TsMs     int64           `json:"ts_ms"`
	CausedBy string          `json:"caused_by"`
	Topic    Topic           `json:"topic"`
	Data     json.RawMessage `json:"data"`
}

// NewEvent builds an event record from a typed payload.
func NewEvent(id string, tsMs int64, causedBy string, p Payload) (Event, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", p.Topic(), err)
	}
	return Event{
		Type:     TypeEvent,
		V:        Version,
		ID:       id,
		TsMs:     tsMs,
		CausedBy: causedBy,
		Topic:    p.Topic(),
		Data:     data,
	}, nil
}

// ParseEvent decodes one journal line into an Event.
func ParseEvent(line []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return Event{}, fmt.Errorf("parse event record: %w", err)
	}
	return e, nil
}

// ParseCommand decodes one journal line into a Command.
func ParseCommand(line []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(line, &c); err != nil {
		return Command{}, fmt.Errorf("parse command record: %w", err)
	}
	return c, nil
}

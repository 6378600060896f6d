package journal

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/kuhul/internal/state"
)

// Data kinds within TopicStateChanged events.
const (
	KindComponentCreated = "component.created"
	KindThemeChanged     = "theme.changed"
)

// Payload is the tagged union of event data shapes. Each variant knows
// its topic; state.changed variants additionally carry a "kind"
// discriminator on the wire.
type Payload interface {
	Topic() Topic
}

// ComponentCreated is the state.changed payload for a new component.
// It carries the entire created record so replay needs no other source.
type ComponentCreated struct {
	Component state.Component `json:"component"`
}

// Topic implements Payload.
func (ComponentCreated) Topic() Topic { return TopicStateChanged }

// MarshalJSON adds the kind discriminator.
func (p ComponentCreated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string          `json:"kind"`
		Component state.Component `json:"component"`
	}{KindComponentCreated, p.Component})
}

// ThemeChanged is the state.changed payload for a theme switch. It
// carries the full new theme name, not a delta.
type ThemeChanged struct {
	To state.Theme `json:"to"`
}

// Topic implements Payload.
func (ThemeChanged) Topic() Topic { return TopicStateChanged }

// MarshalJSON adds the kind discriminator.
func (p ThemeChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string      `json:"kind"`
		To   state.Theme `json:"to"`
	}{KindThemeChanged, p.To})
}

// StateSnapshot is the state.snapshot payload: the full serialized state.
// Auditing only; replay never reads it.
type StateSnapshot struct {
	State state.Snapshot
}

// Topic implements Payload.
func (StateSnapshot) Topic() Topic { return TopicStateSnapshot }

// MarshalJSON serializes the snapshot object itself as the event data.
func (p StateSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.State)
}

// UnmarshalJSON mirrors MarshalJSON.
func (p *StateSnapshot) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &p.State)
}

// ExportRequested records an export request. Informational only.
type ExportRequested struct {
	Hint string `json:"hint"`
}

// Topic implements Payload.
func (ExportRequested) Topic() Topic { return TopicExportRequested }

// ChatCompleted records a successful chat completion from a provider.
type ChatCompleted struct {
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Response string         `json:"response"`
	Meta     map[string]any `json:"meta"`
}

// Topic implements Payload.
func (ChatCompleted) Topic() Topic { return TopicChatCompleted }

// ChatFailed records a failed chat completion.
type ChatFailed struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// Topic implements Payload.
func (ChatFailed) Topic() Topic { return TopicChatFailed }

// DecodePayload decodes an event's data into its typed payload.
//
// Unknown topics and unknown state.changed kinds return (nil, nil) so
// that replay stays total over future or foreign events. A recognized
// topic whose data does not unmarshal is reported as an error.
func DecodePayload(e Event) (Payload, error) {
	switch e.Topic {
	case TopicStateChanged:
		var head struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(e.Data, &head); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", e.Topic, err)
		}
		switch head.Kind {
		case KindComponentCreated:
			var p ComponentCreated
			if err := json.Unmarshal(e.Data, &p); err != nil {
				return nil, fmt.Errorf("decode %s/%s data: %w", e.Topic, head.Kind, err)
			}
			return p, nil
		case KindThemeChanged:
			var p ThemeChanged
			if err := json.Unmarshal(e.Data, &p); err != nil {
				return nil, fmt.Errorf("decode %s/%s data: %w", e.Topic, head.Kind, err)
			}
			return p, nil
		default:
			return nil, nil
		}
	case TopicStateSnapshot:
		var p StateSnapshot
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", e.Topic, err)
		}
		return p, nil
	case TopicExportRequested:
		var p ExportRequested
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", e.Topic, err)
		}
		return p, nil
	case TopicChatCompleted:
		var p ChatCompleted
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", e.Topic, err)
		}
		return p, nil
	case TopicChatFailed:
		var p ChatFailed
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", e.Topic, err)
		}
		return p, nil
	default:
		return nil, nil
	}
}

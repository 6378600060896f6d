package journal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kuhul/internal/state"
)

func TestNewCommand_Envelope(t *testing.T) {
	cmd := NewCommand("cmd_1", 1700000000000, Source{Kind: "cli", Who: "local", Session: "s1"}, OpCreate, map[string]any{"component": "button"})

	assert.Equal(t, TypeCommand, cmd.Type)
	assert.Equal(t, Version, cmd.V)
	assert.Equal(t, "cmd_1", cmd.ID)
	assert.Equal(t, int64(1700000000000), cmd.TsMs)
	assert.Equal(t, OpCreate, cmd.Op)
}

func TestNewCommand_NilArgs(t *testing.T) {
	cmd := NewCommand("cmd_1", 1, Source{}, OpExport, nil)
	require.NotNil(t, cmd.Args)
	assert.Empty(t, cmd.Args)
}

func TestNewEvent_TopicFromPayload(t *testing.T) {
	evt, err := NewEvent("evt_1", 42, "cmd_1", ThemeChanged{To: state.ThemeDark})
	require.NoError(t, err)

	assert.Equal(t, TypeEvent, evt.Type)
	assert.Equal(t, TopicStateChanged, evt.Topic)
	assert.Equal(t, "cmd_1", evt.CausedBy)
	assert.JSONEq(t, `{"kind":"theme.changed","to":"dark"}`, string(evt.Data))
}

func TestComponentCreated_WireShape(t *testing.T) {
	comp := state.Component{
		ID:    "cmp_1",
		Type:  state.ComponentButton,
		Props: map[string]any{"text": "OK"},
	}
	evt, err := NewEvent("evt_1", 1, "cmd_1", ComponentCreated{Component: comp})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"kind": "component.created",
		"component": {"id":"cmp_1","type":"button","props":{"text":"OK"}}
	}`, string(evt.Data))
}

func TestDecodePayload_RoundTrips(t *testing.T) {
	comp := state.Component{ID: "cmp_1", Type: state.ComponentCard, Props: map[string]any{"label": "Hi"}}

	tests := []struct {
		name    string
		payload Payload
	}{
		{"component created", ComponentCreated{Component: comp}},
		{"theme changed", ThemeChanged{To: state.ThemeLight}},
		{"snapshot", StateSnapshot{State: state.Snapshot{Components: []state.Component{comp}, Theme: state.ThemeDark}}},
		{"export requested", ExportRequested{Hint: "out.svg"}},
		{"chat completed", ChatCompleted{Provider: "openai", Model: "gpt-4o", Response: "hi", Meta: map[string]any{"request_url": "u"}}},
		{"chat failed", ChatFailed{Provider: "claude", Error: "HTTP 401: nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := NewEvent("evt_1", 1, "cmd_1", tt.payload)
			require.NoError(t, err)

			decoded, err := DecodePayload(evt)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestDecodePayload_UnknownTopicIgnored(t *testing.T) {
	evt := Event{
		Type:  TypeEvent,
		V:     Version,
		Topic: Topic("future.topic"),
		Data:  json.RawMessage(`{"anything":"goes"}`),
	}

	decoded, err := DecodePayload(evt)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodePayload_UnknownStateChangedKindIgnored(t *testing.T) {
	evt := Event{
		Type:  TypeEvent,
		Topic: TopicStateChanged,
		Data:  json.RawMessage(`{"kind":"component.resized","w":100}`),
	}

	decoded, err := DecodePayload(evt)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodePayload_MalformedDataFails(t *testing.T) {
	evt := Event{
		Type:  TypeEvent,
		Topic: TopicStateChanged,
		Data:  json.RawMessage(`"not an object"`),
	}

	_, err := DecodePayload(evt)
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	line := []byte(`{"@type":"kuhul.event","@v":"1.0.0","id":"evt_1","ts_ms":5,"caused_by":"cmd_1","topic":"state.changed","data":{"kind":"theme.changed","to":"dark"}}`)

	evt, err := ParseEvent(line)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, TopicStateChanged, evt.Topic)

	_, err = ParseEvent([]byte(`{"ts_ms":"not a number"}`))
	assert.Error(t, err)
}

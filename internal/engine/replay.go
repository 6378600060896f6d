package engine

import (
	"fmt"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/sessionlog"
	"github.com/roach88/kuhul/internal/state"
)

// Replay reconstructs a state projection from the event log alone.
//
// The fold starts from an empty state and applies only state.changed
// events in file order: component.created appends the recorded component
// verbatim, theme.changed sets the theme when it names a recognized
// theme. Every other topic and kind is ignored, which keeps the fold
// total over future or foreign events and independent of snapshots.
//
// Replaying the same log twice yields structurally identical states.
// The only failure mode is a corrupt log, which aborts the whole read.
func Replay(log *sessionlog.Log) (*state.State, error) {
	records, err := log.ReadAll()
	if err != nil {
		return nil, err
	}

	st := state.New()
	for i, raw := range records {
		evt, err := journal.ParseEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", sessionlog.ErrCorruptLog, log.Path(), i+1, err)
		}
		if evt.Topic != journal.TopicStateChanged {
			continue
		}
		payload, err := journal.DecodePayload(evt)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", sessionlog.ErrCorruptLog, log.Path(), i+1, err)
		}
		switch p := payload.(type) {
		case journal.ComponentCreated:
			st.AppendComponent(p.Component)
		case journal.ThemeChanged:
			if p.To.Valid() {
				st.SetTheme(p.To)
			}
		}
	}
	return st, nil
}

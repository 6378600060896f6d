// Package harness runs end-to-end command scenarios against a throwaway
// session and captures the resulting event trace for golden comparison.
//
// Scenarios use the deterministic id generator and a fixed millisecond
// clock, so the journal bytes they produce are exactly reproducible and
// can be compared against golden files.
package harness

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/roach88/kuhul/internal/bus"
	"github.com/roach88/kuhul/internal/engine"
	"github.com/roach88/kuhul/internal/id"
	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/sessionlog"
	"github.com/roach88/kuhul/internal/state"
)

// BaseTsMs is the first timestamp a scenario clock returns. Each
// subsequent call advances by one millisecond.
const BaseTsMs = 1700000000000

// Step is one command in a scenario. Snapshot requests a state.snapshot
// emission after the command applies, mirroring the CLI's behavior.
type Step struct {
	Op       journal.Op
	Args     map[string]any
	Snapshot bool
}

// Scenario is a named command script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Result captures everything a scenario produced.
type Result struct {
	// State is the engine's live projection snapshot after the last step.
	State state.Snapshot
	// Events is the persisted event log, in write order.
	Events []journal.Event
	// EventLog is the backing log, for replay assertions.
	EventLog *sessionlog.Log
	// StepErrs holds the ApplyCommand error per step (nil on success).
	StepErrs []error
}

// Run executes the scenario in a temp session and reads back the event
// log. Command rejections are recorded in StepErrs, not fatal: scenarios
// deliberately include invalid commands to pin down rejection behavior.
func Run(t *testing.T, sc Scenario) Result {
	t.Helper()

	dir := t.TempDir()
	eventLog := sessionlog.New(filepath.Join(dir, sc.Name+".events.jsonl"))
	commandLog := sessionlog.New(filepath.Join(dir, sc.Name+".commands.jsonl"))

	ids := id.NewSequenceGenerator()
	clock := newScenarioClock(BaseTsMs)
	eng := engine.New(bus.New(eventLog), state.New(), ids, engine.WithNow(clock))

	result := Result{EventLog: eventLog}
	for _, step := range sc.Steps {
		tsMs := clock()
		cmd := journal.NewCommand(
			ids.Next(journal.KindCommand, tsMs),
			tsMs,
			journal.Source{Kind: "test", Who: "harness", Session: sc.Name},
			step.Op,
			step.Args,
		)
		if err := commandLog.Append(cmd); err != nil {
			t.Fatalf("append command: %v", err)
		}

		err := eng.ApplyCommand(cmd)
		result.StepErrs = append(result.StepErrs, err)
		if err == nil && step.Snapshot {
			if _, err := eng.StateSnapshot(cmd.ID); err != nil {
				t.Fatalf("state snapshot: %v", err)
			}
		}
	}
	result.State = eng.State().Snapshot()

	records, err := eventLog.ReadAll()
	if err != nil {
		t.Fatalf("read event log: %v", err)
	}
	for _, raw := range records {
		evt, err := journal.ParseEvent(raw)
		if err != nil {
			t.Fatalf("parse event: %v", err)
		}
		result.Events = append(result.Events, evt)
	}
	return result
}

// newScenarioClock returns a clock whose first reading is start and
// which advances one millisecond per call.
func newScenarioClock(start int64) func() int64 {
	var n atomic.Int64
	n.Store(start - 1)
	return func() int64 { return n.Add(1) }
}

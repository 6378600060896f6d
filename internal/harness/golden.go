package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kuhul/internal/journal"
)

// AssertGoldenTrace compares the scenario's persisted event trace plus
// final state against testdata/<name>.golden.
//
// The trace is serialized with the journal's canonical encoding, one
// event per line, followed by a separator and the final state snapshot,
// so byte comparison is exact.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func AssertGoldenTrace(t *testing.T, name string, r Result) {
	t.Helper()

	var buf bytes.Buffer
	for _, evt := range r.Events {
		line, err := journal.MarshalCanonical(evt)
		if err != nil {
			t.Fatalf("marshal event %s: %v", evt.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteString("---\n")
	snap, err := journal.MarshalCanonical(r.State)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	buf.Write(snap)
	buf.WriteByte('\n')

	g := goldie.New(t)
	g.Assert(t, name, buf.Bytes())
}

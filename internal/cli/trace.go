package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/sessionlog"
	"github.com/roach88/kuhul/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Topic    string
	CausedBy string
	Limit    int
	Database string
}

// TraceEntryResult is one trace row in JSON output.
type TraceEntryResult struct {
	Seq      int64  `json:"seq"`
	ID       string `json:"id"`
	TsMs     int64  `json:"ts_ms"`
	CausedBy string `json:"caused_by"`
	Topic    string `json:"topic"`
	Data     string `json:"data"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query the session's event trace",
		Long: `Build a derived SQLite index of the session's event log and query it.

The index is rebuilt from the JSONL event log on every run; it is never
authoritative and replay never reads it.

Examples:
  kuhul trace
  kuhul trace --topic state.changed
  kuhul trace --caused-by cmd_1712... --db output/sess_local.index.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Topic, "topic", "", "filter by topic")
	cmd.Flags().StringVar(&opts.CausedBy, "caused-by", "", "filter by causing command/event id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max rows (0 = all)")
	cmd.Flags().StringVar(&opts.Database, "db", ":memory:", "index database path")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	records, err := sessionlog.New(eventLogPath(opts.RootOptions)).ReadAll()
	if err != nil {
		return WrapExitError(ExitFailure, "read event log", err)
	}
	events := make([]journal.Event, 0, len(records))
	for i, raw := range records {
		evt, err := journal.ParseEvent(raw)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("parse event at line %d", i+1), err)
		}
		events = append(events, evt)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open trace index", err)
	}
	defer st.Close()

	if err := st.Reindex(ctx, events); err != nil {
		return WrapExitError(ExitFailure, "rebuild trace index", err)
	}

	entries, err := st.Query(ctx, store.Filter{
		Topic:    opts.Topic,
		CausedBy: opts.CausedBy,
		Limit:    opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "query trace index", err)
	}

	if opts.Format == "json" {
		results := make([]TraceEntryResult, 0, len(entries))
		for _, e := range entries {
			results = append(results, TraceEntryResult{
				Seq:      e.Seq,
				ID:       e.Event.ID,
				TsMs:     e.Event.TsMs,
				CausedBy: e.Event.CausedBy,
				Topic:    string(e.Event.Topic),
				Data:     string(e.Event.Data),
			})
		}
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(map[string]any{
			"total":   len(entries),
			"entries": results,
		})
	}

	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-22s %s caused_by=%s\n", e.Seq, e.Event.Topic, e.Event.ID, e.Event.CausedBy)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d event(s)\n", len(entries))
	return nil
}

package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/engine"
	"github.com/roach88/kuhul/internal/render"
	"github.com/roach88/kuhul/internal/sessionlog"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	File string
	SVG  string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an event log and export SVG",
		Long: `Reconstruct state purely from the event log and render it to SVG.

Replay folds only state.changed events over an empty state, in file
order. Snapshots, chat events, and unknown topics are ignored, so the
reconstruction depends on nothing but the incremental events.

Exit codes:
  0 - Replay succeeded
  1 - Corrupt event log
  2 - Command error

Examples:
  kuhul replay
  kuhul replay --file output/sess_local.events.jsonl --svg rebuilt.svg`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "event log path (JSONL); default <out>/<session>.events.jsonl")
	cmd.Flags().StringVar(&opts.SVG, "svg", "", "output svg filename; default <out>/<session>.replay.svg")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	logPath := opts.File
	if logPath == "" {
		logPath = eventLogPath(opts.RootOptions)
	}
	svgPath := opts.SVG
	if svgPath == "" {
		svgPath = filepath.Join(opts.Out, opts.Session+".replay.svg")
	}

	st, err := engine.Replay(sessionlog.New(logPath))
	if err != nil {
		return WrapExitError(ExitFailure, "replay event log", err)
	}

	if err := writeSVG(svgPath, render.SVG(st.Snapshot())); err != nil {
		return err
	}

	if opts.Quiet {
		return nil
	}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Successf(map[string]any{
		"event_log":  logPath,
		"svg_path":   svgPath,
		"components": st.Len(),
		"theme":      string(st.Theme()),
	}, "Replayed SVG written: %s", svgPath)
}

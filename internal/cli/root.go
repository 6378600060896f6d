// Package cli wires the command-line surface of kuhul: a session-scoped,
// append-only journal of commands and events, an in-memory UI state
// projection, deterministic SVG rendering, and replay.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/journal"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Session string // session id, keys the journal files
	Out     string // output directory
	Events  string // event log path override
	Quiet   bool   // suppress event printing
	Verbose bool   // debug logging
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kuhul CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "kuhul",
		Short:   "kuhul - append-only UI events with replay",
		Long:    "Records UI commands as causally-linked events in an append-only journal,\nprojects them into state, renders the state to SVG, and can reconstruct\nstate purely by replaying the event log.",
		Version: journal.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Session, "session", "sess_local", "session id (keys the journal files)")
	cmd.PersistentFlags().StringVar(&opts.Out, "out", "output", "output directory")
	cmd.PersistentFlags().StringVar(&opts.Events, "events", "", "event log path (JSONL); default <out>/<session>.events.jsonl")
	cmd.PersistentFlags().BoolVar(&opts.Quiet, "quiet", false, "suppress event printing")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewThemeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

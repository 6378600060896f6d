package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/render"
	"github.com/roach88/kuhul/internal/state"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Text string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <component>",
		Short: "Create a UI component",
		Long: `Create a UI component, record the state.changed event, and render
the session's current state to SVG.

Components: button, card, chat-bubble

Examples:
  kuhul create button --text OK
  kuhul create card --text "Release notes"`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"button", "card", "chat-bubble"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "optional label/text")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command, component string) error {
	s, err := newSession(opts.RootOptions, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	props := map[string]any{}
	if opts.Text != "" {
		// Cards label themselves; everything else carries text.
		key := "text"
		if component == string(state.ComponentCard) {
			key = "label"
		}
		props[key] = opts.Text
	}

	command, err := s.issueCommand(journal.OpCreate, map[string]any{
		"component": component,
		"props":     props,
	})
	if err != nil {
		return err
	}
	if err := s.apply(command); err != nil {
		return err
	}

	// Snapshot after mutate (handy for debugging).
	if _, err := s.engine.StateSnapshot(command.ID); err != nil {
		return WrapExitError(ExitFailure, "emit snapshot", err)
	}

	svgPath := s.svgPath()
	if err := writeSVG(svgPath, render.SVG(s.engine.State().Snapshot())); err != nil {
		return err
	}

	if opts.Quiet {
		return nil
	}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Successf(map[string]any{
		"command_id": command.ID,
		"component":  component,
		"svg_path":   svgPath,
	}, "SVG written: %s", svgPath)
}

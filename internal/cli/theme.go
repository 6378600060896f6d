package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/render"
)

// NewThemeCommand creates the theme command.
func NewThemeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme <name>",
		Short: "Apply a theme",
		Long: `Apply a theme, record the state.changed event, and render the
session's current state to SVG.

Themes: dark, light`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"dark", "light"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(rootOpts, cmd, args[0])
		},
	}

	return cmd
}

func runTheme(opts *RootOptions, cmd *cobra.Command, name string) error {
	s, err := newSession(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	command, err := s.issueCommand(journal.OpApplyTheme, map[string]any{"name": name})
	if err != nil {
		return err
	}
	if err := s.apply(command); err != nil {
		return err
	}
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
		"theme":      name,
		"svg_path":   svgPath,
	}, "SVG written: %s", svgPath)
}

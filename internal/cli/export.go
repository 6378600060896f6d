package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/render"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	File string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export current state to SVG",
		Long: `Render the session's current state to SVG and record an informational
svg.export.requested event. State is unchanged.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "output svg filename; default <out>/<session>.svg")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	outSVG := opts.File
	if outSVG == "" {
		outSVG = s.svgPath()
	}

	command, err := s.issueCommand(journal.OpExport, map[string]any{
		"hint": filepath.Base(outSVG),
	})
	if err != nil {
		return err
	}
	if err := s.apply(command); err != nil {
		return err
	}
	if _, err := s.engine.StateSnapshot(command.ID); err != nil {
		return WrapExitError(ExitFailure, "emit snapshot", err)
	}

	if err := writeSVG(outSVG, render.SVG(s.engine.State().Snapshot())); err != nil {
		return err
	}

	if opts.Quiet {
		return nil
	}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Successf(map[string]any{
		"command_id": command.ID,
		"svg_path":   outSVG,
	}, "SVG written: %s", outSVG)
}

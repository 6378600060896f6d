package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/kuhul/internal/schema"
	"github.com/roach88/kuhul/internal/sessionlog"
)

// ValidateResult summarizes a validation run for JSON output.
type ValidateResult struct {
	CommandLines  int      `json:"command_lines"`
	EventLines    int      `json:"event_lines"`
	CommandErrors []string `json:"command_errors,omitempty"`
	EventErrors   []string `json:"event_errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the session's journal files against their schemas",
		Long: `Validate every line of <session>.commands.jsonl and
<session>.events.jsonl against the embedded record schemas.

All violations are reported, not just the first.

Exit codes:
  0 - All lines valid
  1 - Schema violations or corrupt log
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	validator, err := schema.NewValidator()
	if err != nil {
		return WrapExitError(ExitCommandError, "load schemas", err)
	}

	commandLines, err := readLines(filepath.Join(opts.Out, opts.Session+".commands.jsonl"))
	if err != nil {
		return WrapExitError(ExitFailure, "read command log", err)
	}
	eventLines, err := readLines(eventLogPath(opts))
	if err != nil {
		return WrapExitError(ExitFailure, "read event log", err)
	}

	commandErrs := schema.ValidateLines(commandLines, validator.ValidateCommand)
	eventErrs := schema.ValidateLines(eventLines, validator.ValidateEvent)

	result := ValidateResult{
		CommandLines: len(commandLines),
		EventLines:   len(eventLines),
	}
	for _, e := range commandErrs {
		result.CommandErrors = append(result.CommandErrors, e.Error())
	}
	for _, e := range eventErrs {
		result.EventErrors = append(result.EventErrors, e.Error())
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		for _, e := range commandErrs {
			fmt.Fprintf(cmd.OutOrStdout(), "commands.jsonl %v\n", e.Error())
		}
		for _, e := range eventErrs {
			fmt.Fprintf(cmd.OutOrStdout(), "events.jsonl %v\n", e.Error())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "validated %d command line(s), %d event line(s): %d violation(s)\n",
			len(commandLines), len(eventLines), len(commandErrs)+len(eventErrs))
	}

	if len(commandErrs)+len(eventErrs) > 0 {
		return NewExitError(ExitFailure, "journal schema violations")
	}
	return nil
}

func readLines(path string) ([][]byte, error) {
	records, err := sessionlog.New(path).ReadAll()
	if err != nil {
		return nil, err
	}
	lines := make([][]byte, len(records))
	for i, r := range records {
		lines[i] = r
	}
	return lines, nil
}

// Package schema validates journal lines against embedded CUE schemas.
//
// Validation is an audit tool for the `validate` command; the engine and
// replay never require it. It catches hand-edited or foreign records
// before they surprise downstream consumers.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed records.cue
var recordsCUE string

// Validator checks journal lines against the record schemas.
type Validator struct {
	command cue.Value
	event   cue.Value
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	val := ctx.CompileString(recordsCUE, cue.Filename("records.cue"))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("compile record schemas: %w", err)
	}

	command := val.LookupPath(cue.ParsePath("#Command"))
	if err := command.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Command: %w", err)
	}
	event := val.LookupPath(cue.ParsePath("#Event"))
	if err := event.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Event: %w", err)
	}
	return &Validator{command: command, event: event}, nil
}

// ValidateCommand checks one command log line.
func (v *Validator) ValidateCommand(line []byte) error {
	return cuejson.Validate(line, v.command)
}

// ValidateEvent checks one event log line.
func (v *Validator) ValidateEvent(line []byte) error {
	return cuejson.Validate(line, v.event)
}

// LineError is one schema violation with its 1-based line number.
type LineError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ValidateLines checks every line with the given check function and
// collects all violations rather than stopping at the first.
func ValidateLines(lines [][]byte, check func([]byte) error) []LineError {
	var errs []LineError
	for i, line := range lines {
		if err := check(line); err != nil {
			errs = append(errs, LineError{Line: i + 1, Err: err})
		}
	}
	return errs
}

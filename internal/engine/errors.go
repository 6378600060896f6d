package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/kuhul/internal/journal"
)

// Code categorizes command rejections.
type Code string

const (
	// CodeUnrecognizedOp indicates the command's op is not in the
	// dispatch table.
	CodeUnrecognizedOp Code = "UNRECOGNIZED_OP"

	// CodeInvalidArgument indicates required args are missing or
	// malformed.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// CommandError is a command rejection. The command had no effect: no
// mutation, no event.
type CommandError struct {
	Code    Code
	Op      journal.Op
	Message string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
}

// IsUnrecognizedOp reports whether err is an unrecognized-operation
// rejection. Uses errors.As to handle wrapped errors.
func IsUnrecognizedOp(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == CodeUnrecognizedOp
}

// IsInvalidArgument reports whether err is an invalid-argument
// rejection. Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == CodeInvalidArgument
}

func invalidArgf(op journal.Op, format string, args ...any) *CommandError {
	return &CommandError{
		Code:    CodeInvalidArgument,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

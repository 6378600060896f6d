package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/kuhul/internal/bus"
	"github.com/roach88/kuhul/internal/engine"
	"github.com/roach88/kuhul/internal/id"
	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/sessionlog"
)

// session wires one CLI invocation: both journal logs, the bus, and an
// engine whose state is rehydrated by replaying the existing event log.
//
// Rehydration keeps the in-memory projection equal to the fold of the
// log prefix even across invocations, so newly emitted events always
// extend a consistent history.
type session struct {
	opts       *RootOptions
	eventLog   *sessionlog.Log
	commandLog *sessionlog.Log
	ids        id.Generator
	engine     *engine.Engine
}

// eventLogPath resolves the event log location from the global flags.
func eventLogPath(opts *RootOptions) string {
	if opts.Events != "" {
		return opts.Events
	}
	return filepath.Join(opts.Out, opts.Session+".events.jsonl")
}

// newSession prepares the output directory, rehydrates state from the
// event log, and subscribes the event printer unless --quiet.
func newSession(opts *RootOptions, out io.Writer) (*session, error) {
	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create output directory", err)
	}

	eventLog := sessionlog.New(eventLogPath(opts))
	commandLog := sessionlog.New(filepath.Join(opts.Out, opts.Session+".commands.jsonl"))

	st, err := engine.Replay(eventLog)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "rehydrate state from event log", err)
	}

	b := bus.New(eventLog)
	if !opts.Quiet && opts.Format != "json" {
		b.Subscribe(eventPrinter(out))
	}

	ids := id.NewRandomGenerator()
	eng := engine.New(b, st, ids, engine.WithLogger(slog.Default()))

	return &session{
		opts:       opts,
		eventLog:   eventLog,
		commandLog: commandLog,
		ids:        ids,
		engine:     eng,
	}, nil
}

// eventPrinter echoes each published event, the CLI's own projection of
// the bus.
func eventPrinter(out io.Writer) bus.Handler {
	return func(e journal.Event) error {
		fmt.Fprintf(out, "[%s] %s caused_by=%s\n", e.Topic, e.ID, e.CausedBy)
		return nil
	}
}

// issueCommand builds a command record, appends it to the audit log, and
// returns it. The command log is never read for reconstruction.
func (s *session) issueCommand(op journal.Op, args map[string]any) (journal.Command, error) {
	tsMs := time.Now().UnixMilli()
	cmd := journal.NewCommand(
		s.ids.Next(journal.KindCommand, tsMs),
		tsMs,
		journal.Source{Kind: "cli", Who: "local", Session: s.opts.Session},
		op,
		args,
	)
	if err := s.commandLog.Append(cmd); err != nil {
		return journal.Command{}, WrapExitError(ExitFailure, "append to command log", err)
	}
	return cmd, nil
}

// apply runs the command through the engine, mapping rejections to
// command errors (exit 2) and I/O failures to failures (exit 1).
func (s *session) apply(cmd journal.Command) error {
	if err := s.engine.ApplyCommand(cmd); err != nil {
		if engine.IsUnrecognizedOp(err) || engine.IsInvalidArgument(err) {
			return WrapExitError(ExitCommandError, "command rejected", err)
		}
		return WrapExitError(ExitFailure, "apply command", err)
	}
	return nil
}

// svgPath resolves the default SVG output path for the session.
func (s *session) svgPath() string {
	return filepath.Join(s.opts.Out, s.opts.Session+".svg")
}

// writeSVG writes the rendered document.
func writeSVG(path, svg string) error {
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return WrapExitError(ExitFailure, "write SVG", err)
	}
	return nil
}

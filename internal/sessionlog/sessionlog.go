// Package sessionlog implements the append-only JSON-Lines logs backing
// a session: <session>.commands.jsonl and <session>.events.jsonl.
//
// A Log is oblivious to what a session means; it is handed a path and
// only appends and reads lines there. Appends are flushed to disk before
// returning. Reads return every record in write order.
//
// Access model: one CLI invocation at a time per session. Concurrent
// multi-writer access from separate processes is not arbitrated; append
// ordering across overlapping invocations is undefined.
package sessionlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/kuhul/internal/journal"
)

// ErrCorruptLog reports a structurally malformed line. Reads abort
// rather than skip, so replay never silently diverges from what was
// written.
var ErrCorruptLog = errors.New("corrupt log")

// maxRecordSize bounds a single record line on both sides of the log:
// Append rejects larger records before writing anything, and ReadAll
// treats longer lines as corrupt. Sized above the provider client's
// 8 MiB response cap so a full chat completion always fits, keeping
// every successfully appended record readable.
const maxRecordSize = 16 << 20

// Log is one append-only JSONL file.
type Log struct {
	path string
}

// New returns a Log backed by the file at path. The file is created on
// first append; it need not exist for ReadAll.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record as a single canonical-JSON line and syncs the
// file before returning. Write failures propagate to the caller; nothing
// is retried.
func (l *Log) Append(record any) error {
	line, err := journal.MarshalCanonical(record)
	if err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	if len(line) > maxRecordSize {
		return fmt.Errorf("append to %s: record of %d bytes exceeds %d byte limit", l.path, len(line), maxRecordSize)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", l.path, err)
	}
	return nil
}

// ReadAll returns every record line in write order. A missing file
// yields an empty slice. Any line that is not a well-formed JSON object
// aborts the read with ErrCorruptLog; valid prior lines are not
// returned partially.
func (l *Log) ReadAll() ([]json.RawMessage, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize+2)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' || !json.Valid(line) {
			return nil, fmt.Errorf("%w: %s line %d", ErrCorruptLog, l.path, lineNo)
		}
		records = append(records, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		// A line Append could never have written is structural damage,
		// not transient I/O.
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: %s line %d: record exceeds %d byte limit", ErrCorruptLog, l.path, lineNo+1, maxRecordSize)
		}
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}
	return records, nil
}

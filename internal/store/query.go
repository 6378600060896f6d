package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/kuhul/internal/journal"
)

// Filter narrows a trace query. Zero values match everything.
type Filter struct {
	// Topic matches events with exactly this topic.
	Topic string
	// CausedBy matches events caused by this command or event id.
	CausedBy string
	// Limit caps the number of rows returned; 0 means no cap.
	Limit int
}

// TraceEntry is one indexed event with its position in the log.
type TraceEntry struct {
	Seq   int64
	Event journal.Event
}

// Query returns matching events in log order (ORDER BY seq ASC).
func (s *Store) Query(ctx context.Context, f Filter) ([]TraceEntry, error) {
	query := `SELECT seq, id, ts_ms, caused_by, topic, data FROM events WHERE 1=1`
	var args []any
	if f.Topic != "" {
		query += ` AND topic = ?`
		args = append(args, f.Topic)
	}
	if f.CausedBy != "" {
		query += ` AND caused_by = ?`
		args = append(args, f.CausedBy)
	}
	query += ` ORDER BY seq ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []TraceEntry
	for rows.Next() {
		var (
			entry TraceEntry
			topic string
			data  string
		)
		if err := rows.Scan(&entry.Seq, &entry.Event.ID, &entry.Event.TsMs, &entry.Event.CausedBy, &topic, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		entry.Event.Type = journal.TypeEvent
		entry.Event.V = journal.Version
		entry.Event.Topic = journal.Topic(topic)
		entry.Event.Data = json.RawMessage(data)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

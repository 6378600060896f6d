package store

import (
	"context"
	"fmt"

	"github.com/roach88/kuhul/internal/journal"
)

// Reindex replaces the index contents with the given events in log
// order. The whole rebuild happens in one transaction: either the index
// reflects exactly these events or it is left unchanged.
func (s *Store) Reindex(ctx context.Context, events []journal.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reindex: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("reindex: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (seq, id, ts_ms, caused_by, topic, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("reindex: prepare: %w", err)
	}
	defer stmt.Close()

	for i, evt := range events {
		data, err := journal.MarshalCanonical(evt.Data)
		if err != nil {
			return fmt.Errorf("reindex: event %s: %w", evt.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i+1, evt.ID, evt.TsMs, evt.CausedBy, string(evt.Topic), string(data)); err != nil {
			return fmt.Errorf("reindex: event %s: %w", evt.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reindex: commit: %w", err)
	}
	return nil
}

// Count returns the number of indexed events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"fmt"
)

// ProcessorRecord is one persisted processor.
type ProcessorRecord struct {
	ID    string
	Kind  string
	Seq   int64 // insertion order within the world
	State []byte
	Tick  int64 // tick at which State was captured
}

// Link places Neighbor on face Side of Processor.
type Link struct {
	ProcessorID string
	Side        int
	NeighborID  string
}

// SaveProcessors upserts processors in one transaction.
func (s *Store) SaveProcessors(ctx context.Context, recs []ProcessorRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save processors: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO processors (id, kind, seq, state, saved_tick)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			state = excluded.state,
			saved_tick = excluded.saved_tick
	`)
	if err != nil {
		return fmt.Errorf("save processors: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		state, err := compactState(rec.State)
		if err != nil {
			return fmt.Errorf("save processor %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Kind, rec.Seq, state, rec.Tick); err != nil {
			return fmt.Errorf("save processor %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save processors: commit: %w", err)
	}
	return nil
}

// SaveProcessor upserts a single processor.
func (s *Store) SaveProcessor(ctx context.Context, rec ProcessorRecord) error {
	return s.SaveProcessors(ctx, []ProcessorRecord{rec})
}

// LoadProcessors returns every processor in insertion order.
func (s *Store) LoadProcessors(ctx context.Context) ([]ProcessorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, seq, state, saved_tick
		FROM processors
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load processors: %w", err)
	}
	defer rows.Close()

	var out []ProcessorRecord
	for rows.Next() {
		var rec ProcessorRecord
		var state string
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Seq, &state, &rec.Tick); err != nil {
			return nil, fmt.Errorf("load processors: scan: %w", err)
		}
		rec.State = []byte(state)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load processors: %w", err)
	}
	return out, nil
}

// DeleteProcessor removes a processor and every link touching it.
func (s *Store) DeleteProcessor(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM processors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete processor %s: %w", id, err)
	}
	return nil
}

// ReplaceLinks swaps the stored link set for links in one transaction.
// Every referenced processor must already be saved.
func (s *Store) ReplaceLinks(ctx context.Context, links []Link) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace links: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM links`); err != nil {
		return fmt.Errorf("replace links: clear: %w", err)
	}
	for _, l := range links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO links (processor_id, side, neighbor_id)
			VALUES (?, ?, ?)
			ON CONFLICT(processor_id, side) DO UPDATE SET neighbor_id = excluded.neighbor_id
		`, l.ProcessorID, l.Side, l.NeighborID)
		if err != nil {
			return fmt.Errorf("replace links: %s/%d: %w", l.ProcessorID, l.Side, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace links: commit: %w", err)
	}
	return nil
}

// LoadLinks returns every link ordered by processor and face.
func (s *Store) LoadLinks(ctx context.Context) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT processor_id, side, neighbor_id
		FROM links
		ORDER BY processor_id COLLATE BINARY ASC, side ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ProcessorID, &l.Side, &l.NeighborID); err != nil {
			return nil, fmt.Errorf("load links: scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	return out, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CompletionRecord is one finished processing cycle.
type CompletionRecord struct {
	ID          int64  `json:"id"`
	ProcessorID string `json:"processor_id"`
	Tick        int64  `json:"tick"`
	RecipeID    int    `json:"recipe_id"`
	Recipe      string `json:"recipe,omitempty"`
}

// RecordCompletion appends to the completion log and returns the row ID.
func (s *Store) RecordCompletion(ctx context.Context, rec CompletionRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (processor_id, tick, recipe_id, recipe)
		VALUES (?, ?, ?, ?)
	`, rec.ProcessorID, rec.Tick, rec.RecipeID, rec.Recipe)
	if err != nil {
		return 0, fmt.Errorf("record completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record completion: last insert id: %w", err)
	}
	return id, nil
}

// Completions returns the log for one processor, or for every processor
// when processorID is empty, oldest first. A positive limit keeps only the
// most recent entries.
func (s *Store) Completions(ctx context.Context, processorID string, limit int) ([]CompletionRecord, error) {
	return s.QueryCompletions(ctx, CompletionQuery{ProcessorID: processorID, Limit: max(limit, 0)})
}

// QueryCompletions returns the completions matching q, oldest first.
func (s *Store) QueryCompletions(ctx context.Context, q CompletionQuery) ([]CompletionRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	query, params := q.compile()
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var out []CompletionRecord
	for rows.Next() {
		var rec CompletionRecord
		if err := rows.Scan(&rec.ID, &rec.ProcessorID, &rec.Tick, &rec.RecipeID, &rec.Recipe); err != nil {
			return nil, fmt.Errorf("query completions: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	return out, nil
}

// SaveClock stores the world's logical tick.
func (s *Store) SaveClock(ctx context.Context, tick int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO world (key, value) VALUES ('tick', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, tick)
	if err != nil {
		return fmt.Errorf("save clock: %w", err)
	}
	return nil
}

// LoadClock returns the stored tick, 0 for a fresh database.
func (s *Store) LoadClock(ctx context.Context) (int64, error) {
	var tick int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM world WHERE key = 'tick'`).Scan(&tick)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load clock: %w", err)
	}
	return tick, nil
}

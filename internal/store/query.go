package store

import (
	"fmt"
	"strings"
)

// CompletionQuery filters the completion log. Zero fields match
// everything.
type CompletionQuery struct {
	ProcessorID string
	Recipe      string
	// Since and Until bound the tick, inclusive. Until applies when
	// positive.
	Since int64
	Until int64
	// Limit keeps only the most recent matches when positive.
	Limit int
}

// Validate rejects ranges no record can satisfy.
func (q CompletionQuery) Validate() error {
	switch {
	case q.Since < 0:
		return fmt.Errorf("since must not be negative, got %d", q.Since)
	case q.Until < 0:
		return fmt.Errorf("until must not be negative, got %d", q.Until)
	case q.Until > 0 && q.Until < q.Since:
		return fmt.Errorf("until %d is before since %d", q.Until, q.Since)
	case q.Limit < 0:
		return fmt.Errorf("limit must not be negative, got %d", q.Limit)
	}
	return nil
}

// Matches reports whether rec passes the filter. Limit is ignored.
func (q CompletionQuery) Matches(rec CompletionRecord) bool {
	return (q.ProcessorID == "" || rec.ProcessorID == q.ProcessorID) &&
		(q.Recipe == "" || rec.Recipe == q.Recipe) &&
		rec.Tick >= q.Since &&
		(q.Until <= 0 || rec.Tick <= q.Until)
}

// compile builds the SELECT for q. Values are always bound as parameters.
// Rows come back oldest first; (tick, id) breaks ties by insertion order.
func (q CompletionQuery) compile() (string, []any) {
	var where []string
	var params []any
	eq := func(field string, v any) {
		where = append(where, field+" = ?")
		params = append(params, v)
	}
	if q.ProcessorID != "" {
		eq("processor_id", q.ProcessorID)
	}
	if q.Recipe != "" {
		eq("recipe", q.Recipe)
	}
	if q.Since > 0 {
		where = append(where, "tick >= ?")
		params = append(params, q.Since)
	}
	if q.Until > 0 {
		where = append(where, "tick <= ?")
		params = append(params, q.Until)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}
	inner := "SELECT id, processor_id, tick, recipe_id, recipe FROM completions" + whereClause
	if q.Limit <= 0 {
		return inner + " ORDER BY tick ASC, id ASC", params
	}

	// Take the newest Limit rows, then restore oldest-first order.
	params = append(params, q.Limit)
	return "SELECT id, processor_id, tick, recipe_id, recipe FROM (" +
		inner + " ORDER BY tick DESC, id DESC LIMIT ?" +
		") ORDER BY tick ASC, id ASC", params
}

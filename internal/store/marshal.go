package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// compactState validates a JSON snapshot and strips insignificant
// whitespace before it is written.
func compactState(state []byte) (string, error) {
	if len(bytes.TrimSpace(state)) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, state); err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return buf.String(), nil
}

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestProcessor creates a processor record with a small state blob.
func createTestProcessor(id, kind string, seq int64) ProcessorRecord {
	return ProcessorRecord{
		ID:    id,
		Kind:  kind,
		Seq:   seq,
		State: []byte(fmt.Sprintf(`{"time": %d}`, seq)),
	}
}

func mustSave(t *testing.T, s *Store, recs ...ProcessorRecord) {
	t.Helper()
	if err := s.SaveProcessors(context.Background(), recs); err != nil {
		t.Fatalf("SaveProcessors() failed: %v", err)
	}
}

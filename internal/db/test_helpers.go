package db

import (
	"path/filepath"
	"testing"
)

// MustOpenTestDB opens a throwaway database with the full schema
// applied and closes it when the test finishes.
func MustOpenTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "zonetrack_test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func int64Ptr(v int64) *int64 {
	return &v
}

func floatPtr(f float64) *float64 {
	return &f
}

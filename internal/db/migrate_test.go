package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateUpDown(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate_test.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 0 || dirty {
		t.Fatalf("expected fresh database, got version %d dirty %v", version, dirty)
	}

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	// Running up again is a no-op.
	if err := db.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}

	version, dirty, err = db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version == 0 || dirty {
		t.Fatalf("expected migrated database, got version %d dirty %v", version, dirty)
	}

	// Schema is usable after migration.
	if err := db.UpsertBeacon("AA", "Alice", "Warehouse", 1000); err != nil {
		t.Fatalf("UpsertBeacon after migrate failed: %v", err)
	}

	if err := db.MigrateDown(); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	if err := db.UpsertBeacon("AA", "Alice", "Warehouse", 1000); err == nil {
		t.Fatal("expected schema to be gone after down migration")
	}
}

func TestNewDB_AppliesSchema(t *testing.T) {
	db := MustOpenTestDB(t)

	tables := []string{"assets", "hubs", "beacons", "beacon_history", "time_tracking"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(`
			SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?
		`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

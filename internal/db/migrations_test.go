package db_test

import (
	"path/filepath"
	"testing"

	"github.com/saadjs/kcal-trends/internal/db"
)

func TestApplyMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kcal.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 2 {
		t.Fatalf("expected 2 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"entries", "goals"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}
}

func TestEntriesAcceptLooselyTypedNutrients(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "kcal.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqldb.Exec(`
INSERT INTO entries(user_id, consumed_at, calories, protein_g, carbs_g, fat_g)
VALUES('u1', '2026-02-10T08:00:00Z', 'lots', NULL, '12', 3.5)
`); err != nil {
		t.Fatalf("insert loose entry: %v", err)
	}

	var kind string
	if err := sqldb.QueryRow(`SELECT typeof(calories) FROM entries`).Scan(&kind); err != nil {
		t.Fatalf("typeof calories: %v", err)
	}
	if kind != "text" {
		t.Fatalf("expected non-numeric calories kept as text, got %s", kind)
	}
}

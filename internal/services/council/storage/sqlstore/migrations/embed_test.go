package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDialectsShipTheSameMigrations(t *testing.T) {
	sqliteEntries, err := fs.ReadDir(SQLiteFS, "sqlite")
	if err != nil {
		t.Fatalf("read sqlite migrations: %v", err)
	}
	postgresEntries, err := fs.ReadDir(PostgresFS, "postgres")
	if err != nil {
		t.Fatalf("read postgres migrations: %v", err)
	}
	if len(sqliteEntries) == 0 {
		t.Fatal("expected sqlite migrations")
	}
	if len(sqliteEntries) != len(postgresEntries) {
		t.Fatalf("expected matching migration counts, got %d and %d", len(sqliteEntries), len(postgresEntries))
	}
	for i := range sqliteEntries {
		if sqliteEntries[i].Name() != postgresEntries[i].Name() {
			t.Fatalf("migration %d differs: %s vs %s", i, sqliteEntries[i].Name(), postgresEntries[i].Name())
		}
	}
}

func TestMigrationsDeclareUpSection(t *testing.T) {
	for root, fsys := range map[string]fs.FS{"sqlite": SQLiteFS, "postgres": PostgresFS} {
		entries, err := fs.ReadDir(fsys, root)
		if err != nil {
			t.Fatalf("read %s migrations: %v", root, err)
		}
		for _, entry := range entries {
			content, err := fs.ReadFile(fsys, root+"/"+entry.Name())
			if err != nil {
				t.Fatalf("read %s: %v", entry.Name(), err)
			}
			if !strings.Contains(string(content), "-- +migrate Up") {
				t.Fatalf("%s/%s: missing up marker", root, entry.Name())
			}
		}
	}
}

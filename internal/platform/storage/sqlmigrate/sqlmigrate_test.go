package sqlmigrate

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	db := openTestDB(t)

	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE favor(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE favor;"),
		},
	}

	applied, err := ApplyMigrations(context.Background(), db, DialectSQLite, migrations, "")
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(applied) != 1 || applied[0] != "001_create.sql" {
		t.Fatalf("expected one applied migration, got %v", applied)
	}

	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected 1 migration row, got %d", rows)
	}
	if !tableExists(t, db, "favor") {
		t.Fatal("expected applied table to exist")
	}
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	db := openTestDB(t)

	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE favor(id TEXT PRIMARY KEY);"),
		},
	}
	if _, err := ApplyMigrations(context.Background(), db, DialectSQLite, migrations, ""); err != nil {
		t.Fatalf("apply initial migrations: %v", err)
	}

	applied, err := ApplyMigrations(context.Background(), db, DialectSQLite, migrations, "")
	if err != nil {
		t.Fatalf("re-apply migrations should be idempotent: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing applied on replay, got %v", applied)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected single migration row after replay, got %d", rows)
	}
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	db := openTestDB(t)

	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREAT table things(id INT);"),
		},
	}
	if _, err := ApplyMigrations(context.Background(), db, DialectSQLite, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("expected failed migration to stay unrecorded, got %d rows", rows)
	}
}

func TestApplyMigrationsRespectsMigrationRoot(t *testing.T) {
	db := openTestDB(t)

	migrations := fstest.MapFS{
		"sqlite/001_council.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE council_rows(id TEXT PRIMARY KEY);"),
		},
		"postgres/001_council.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE pg_only(id TEXT PRIMARY KEY);"),
		},
	}

	if _, err := ApplyMigrations(context.Background(), db, DialectSQLite, migrations, "sqlite"); err != nil {
		t.Fatalf("apply migrations with root: %v", err)
	}

	var key string
	if err := db.QueryRow("SELECT name FROM schema_migrations LIMIT 1").Scan(&key); err != nil {
		t.Fatalf("read migration key: %v", err)
	}
	if key != "sqlite/001_council.sql" {
		t.Fatalf("expected migration key with root path, got %q", key)
	}
	if !tableExists(t, db, "council_rows") {
		t.Fatal("expected migrated table in root-based migration")
	}
	if tableExists(t, db, "pg_only") {
		t.Fatal("expected other roots to be ignored")
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if _, err := ApplyMigrations(context.Background(), nil, DialectSQLite, fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected nil db error")
	}
}

func TestDialectBind(t *testing.T) {
	if got := DialectSQLite.Bind(3); got != "?" {
		t.Fatalf("expected ?, got %q", got)
	}
	if got := DialectPostgres.Bind(3); got != "$3" {
		t.Fatalf("expected $3, got %q", got)
	}
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(id INT);", want: "\nCREATE TABLE a(id INT);"},
		{name: "up and down", content: "-- +migrate Up\nA;\n-- +migrate Down\nB;", want: "\nA;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractUpMigration(tt.content); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if !IsAlreadyExistsError(errors.New("table favor already exists")) {
		t.Fatal("expected already exists to match")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("expected syntax error not to match")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query int value: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false
		}
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}

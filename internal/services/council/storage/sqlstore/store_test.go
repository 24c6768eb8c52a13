package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/arcane-codex/internal/platform/storage/sqlmigrate"
	"github.com/louisbranch/arcane-codex/internal/services/council/domain/pantheon"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage/storagetest"
)

func openTestSQLite(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "council.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return store
}

func TestSQLiteStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openTestSQLite(t)
	})
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("ARCANE_CODEX_TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("ARCANE_CODEX_TEST_POSTGRES_DSN not set")
	}
	storagetest.Run(t, func(t *testing.T) storage.Store {
		store, err := OpenPostgres(context.Background(), dsn)
		if err != nil {
			t.Fatalf("open postgres store: %v", err)
		}
		for _, table := range []string{"council_records", "divine_effects", "favor_history", "divine_favor"} {
			if _, err := store.sqlDB.Exec("DELETE FROM " + table); err != nil {
				t.Fatalf("reset %s: %v", table, err)
			}
		}
		return store
	})
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpenSQLiteCreatesDirectoryAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "council.db")
	store, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.UpdateDivineFavor(context.Background(), "p1", "g1", pantheon.Sylara, 12, "test"); err != nil {
		t.Fatalf("update favor: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	favor, err := reopened.GetAllFavor(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get favor: %v", err)
	}
	if favor[pantheon.Sylara] != 12 {
		t.Fatalf("expected persisted favor 12, got %d", favor[pantheon.Sylara])
	}
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: sqlmigrate.DialectSQLite}
	if got := sqlite.rebind("a = ? AND b = ?"); got != "a = ? AND b = ?" {
		t.Fatalf("expected sqlite query unchanged, got %q", got)
	}
	pg := &Store{dialect: sqlmigrate.DialectPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("expected numbered placeholders, got %q", got)
	}
}

func TestMillisHelpers(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	value := time.Date(2026, 2, 1, 9, 0, 0, 0, loc)
	if !fromMillis(toMillis(value)).Equal(value.UTC()) {
		t.Fatal("expected millis round trip")
	}
}

func TestCloseIsNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

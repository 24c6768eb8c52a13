// Package sqlstore implements the council store on database/sql for sqlite
// (modernc.org/sqlite) and postgres (pgx stdlib driver).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/louisbranch/arcane-codex/internal/platform/id"
	"github.com/louisbranch/arcane-codex/internal/platform/storage/sqlmigrate"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage/sqlstore/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is a SQL-backed council store.
type Store struct {
	dialect sqlmigrate.Dialect
	sqlDB   *sql.DB

	now   func() time.Time
	newID func() (string, error)
}

// OpenSQLite opens (creating if needed) a sqlite database at path and applies
// the embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	return open(ctx, sqlmigrate.DialectSQLite, "sqlite", dsn)
}

// OpenPostgres connects to dsn and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	return open(ctx, sqlmigrate.DialectPostgres, "pgx", dsn)
}

func open(ctx context.Context, dialect sqlmigrate.Dialect, driverName, dsn string) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}
	if dialect == sqlmigrate.DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect, err)
	}

	migrationFS, root := migrationSource(dialect)
	if _, err := sqlmigrate.ApplyMigrations(ctx, sqlDB, dialect, migrationFS, root); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		dialect: dialect,
		sqlDB:   sqlDB,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   id.NewID,
	}, nil
}

func migrationSource(dialect sqlmigrate.Dialect) (fs.FS, string) {
	if dialect == sqlmigrate.DialectPostgres {
		return migrations.PostgresFS, "postgres"
	}
	return migrations.SQLiteFS, "sqlite"
}

// Close closes the underlying database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Dialect reports which SQL dialect the store speaks.
func (s *Store) Dialect() sqlmigrate.Dialect {
	return s.dialect
}

// rebind rewrites ? placeholders into the store's dialect.
func (s *Store) rebind(query string) string {
	if s.dialect != sqlmigrate.DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	pos := 0
	for _, r := range query {
		if r == '?' {
			pos++
			b.WriteString(s.dialect.Bind(pos))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)

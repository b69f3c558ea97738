// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Import SQLite driver
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// New creates a new SQLite storage backend
func New(path string) (*SQLiteStorage, error) {
	// Convert :memory: to shared memory URL for consistent behavior across
	// connections: SQLite creates separate in-memory databases for each
	// connection to ":memory:".
	dbPath := path
	if path == ":memory:" {
		dbPath = "file::memory:?cache=shared"
	}

	if !strings.Contains(dbPath, ":memory:") {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// WAL for better concurrency, foreign keys enforced, and a busy timeout
	// so a concurrent reader doesn't fail a run immediately.
	connStr := dbPath
	if strings.Contains(dbPath, "?") {
		connStr += "&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
	} else {
		connStr += "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Migrate databases created before the annotation columns existed
	if err := migrateAnnotationColumns(db); err != nil {
		return nil, fmt.Errorf("failed to migrate annotation columns: %w", err)
	}

	absPath := path
	if !strings.Contains(path, ":memory:") {
		absPath, err = filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: absPath,
	}, nil
}

// migrateAnnotationColumns adds expected_release_date and release_notes to
// calling_assignments and the snapshot table if missing. Databases created
// before annotation preservation lack them; the restore step depends on both.
func migrateAnnotationColumns(db *sql.DB) error {
	for _, table := range []string{"calling_assignments", "pre_sync_calling_snapshot"} {
		for _, column := range []string{"expected_release_date", "release_notes"} {
			var exists bool
			err := db.QueryRow(`
				SELECT COUNT(*) > 0
				FROM pragma_table_info(?)
				WHERE name = ?
			`, table, column).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check %s.%s: %w", table, column, err)
			}
			if exists {
				continue
			}
			if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s TEXT`, table, column)); err != nil {
				return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
			}
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// UnderlyingDB returns the underlying *sql.DB connection
func (s *SQLiteStorage) UnderlyingDB() *sql.DB {
	return s.db
}

// BeginTx starts a new database transaction for callers that need to perform
// multiple operations atomically
func (s *SQLiteStorage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// dateLayout is the storage format for date-only columns.
const dateLayout = "2006-01-02"

// dateString converts a date pointer to its storage form.
func dateString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// scanDate converts a stored date string back to a time pointer. Unparseable
// values are treated as absent rather than failing the query.
func scanDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullString converts an empty string to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// stringValue unwraps a nullable text column.
func stringValue(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

// nullInt64 converts an optional int64 for storage.
func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// int64Ptr unwraps a nullable integer column.
func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

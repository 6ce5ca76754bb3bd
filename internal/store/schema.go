// Package store persists taxonomy records in a SQL table. SQLite is the
// default backend, through cgo (sqlite3) or pure Go (sqlite); PostgreSQL is
// reachable through the pgx driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite     = "sqlite3"
	DriverSQLitePure = "sqlite"
	DriverPostgres   = "pgx"
)

// Drivers lists the supported driver names.
func Drivers() []string {
	return []string{DriverSQLite, DriverSQLitePure, DriverPostgres}
}

// DefaultTable is the table used when none is configured.
const DefaultTable = "projecttaxonomies"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	parent     TEXT,
	class_name TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	synonyms   TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s(name);
CREATE INDEX IF NOT EXISTS idx_%[1]s_parent ON %[1]s(parent);
`

// ErrNoTable is wrapped by *MissingTableError.
var ErrNoTable = errors.New("no such table")

// MissingTableError is returned by reads against a table that does not
// exist. Found lists the tables the database does hold.
type MissingTableError struct {
	Table string
	Found []string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("store: no table %q, found tables: [%s]", e.Table, strings.Join(e.Found, ", "))
}

func (e *MissingTableError) Unwrap() error { return ErrNoTable }

// DB wraps a sql.DB bound to one taxonomy table.
type DB struct {
	conn   *sql.DB
	driver string
	table  string
}

// ValidTable reports whether name can be used as a table identifier.
func ValidTable(name string) bool {
	return tableNameRe.MatchString(name)
}

// Open connects to dsn with driver. It creates nothing: the table is created
// by the first Replace, and reads before that fail with *MissingTableError.
func Open(ctx context.Context, driver, dsn, table string) (*DB, error) {
	if !ValidTable(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}
	if !strings.Contains(dsn, "?") {
		switch driver {
		case DriverSQLite:
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		case DriverSQLitePure:
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &DB{conn: conn, driver: driver, table: table}, nil
}

// ensureSchema creates the table and its indexes if they do not exist.
func (db *DB) ensureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(fmt.Sprintf(schemaSQL, db.table), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: apply schema: %w", err)
		}
	}
	return nil
}

// Tables returns the names of the tables in the database, sorted.
func (db *DB) Tables(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY name`
	if db.driver == DriverPostgres {
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name`
	}
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// requireTable fails with *MissingTableError unless the bound table exists.
// Unquoted identifiers are case-insensitive in both backends.
func (db *DB) requireTable(ctx context.Context) error {
	tables, err := db.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if strings.EqualFold(t, db.table) {
			return nil
		}
	}
	return &MissingTableError{Table: db.table, Found: tables}
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Table returns the table name the store reads and writes.
func (db *DB) Table() string { return db.table }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

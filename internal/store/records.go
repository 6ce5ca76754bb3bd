package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/taxonomy/internal/taxonomy"
)

// RecordStore is the flat-form source and sink. Consumers should depend on
// this interface rather than the concrete *DB type.
type RecordStore interface {
	Records(ctx context.Context) ([]taxonomy.Record, error)
	Replace(ctx context.Context, records []taxonomy.Record) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Verify *DB satisfies RecordStore at compile time.
var _ RecordStore = (*DB)(nil)

// Records returns every row in the table, in no particular order.
func (db *DB) Records(ctx context.Context) ([]taxonomy.Record, error) {
	if err := db.requireTable(ctx); err != nil {
		return nil, err
	}
	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT name, parent, class_name, title, synonyms FROM %s`, db.table))
	if err != nil {
		return nil, fmt.Errorf("store: records: %w", err)
	}
	defer rows.Close()

	var out []taxonomy.Record
	for rows.Next() {
		var (
			r        taxonomy.Record
			parent   sql.NullString
			synonyms string
		)
		if err := rows.Scan(&r.Name, &parent, &r.ClassName, &r.Title, &synonyms); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		if parent.Valid {
			p := parent.String
			r.Parent = &p
		}
		if err := json.Unmarshal([]byte(synonyms), &r.Synonyms); err != nil {
			return nil, &taxonomy.RecordError{Record: r.Name, Field: "synonyms", Err: err}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Replace deletes every row and inserts records in one transaction,
// creating the table first if it does not exist.
func (db *DB) Replace(ctx context.Context, records []taxonomy.Record) error {
	if err := db.ensureSchema(ctx); err != nil {
		return err
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, db.table)); err != nil {
		return fmt.Errorf("store: delete all: %w", err)
	}

	if len(records) > 0 {
		stmt, err := tx.PrepareContext(ctx, db.rebind(fmt.Sprintf(
			`INSERT INTO %s (id, name, parent, class_name, title, synonyms) VALUES (?, ?, ?, ?, ?, ?)`,
			db.table)))
		if err != nil {
			return fmt.Errorf("store: prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			synonyms := r.Synonyms
			if synonyms == nil {
				synonyms = []string{}
			}
			synonymsJSON, err := json.Marshal(synonyms)
			if err != nil {
				return &taxonomy.RecordError{Record: r.Name, Field: "synonyms", Err: err}
			}

			var parent sql.NullString
			if r.Parent != nil {
				parent = sql.NullString{String: *r.Parent, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				uuid.NewString(), r.Name, parent, r.ClassName, r.Title, string(synonymsJSON)); err != nil {
				return fmt.Errorf("store: insert %q: %w", r.Name, err)
			}
		}
	}

	return tx.Commit()
}

// Count returns the number of rows in the table.
func (db *DB) Count(ctx context.Context) (int, error) {
	if err := db.requireTable(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := db.conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, db.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Package testutil provides shared test helpers for setting up record stores.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/taxonomy/internal/store"
	"github.com/starford/taxonomy/internal/taxonomy"
)

// TestDB creates a temporary SQLite store holding an empty table. It is
// cleaned up automatically.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "taxonomy-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(context.Background(), store.DriverSQLite, dbFile.Name(), store.DefaultTable)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Replace(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	return db
}

// SeedDB creates a TestDB holding records.
func SeedDB(t *testing.T, records ...taxonomy.Record) *store.DB {
	t.Helper()
	db := TestDB(t)
	if err := db.Replace(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	return db
}

// Ptr returns a pointer to s, for optional record fields.
func Ptr(s string) *string { return &s }

// SampleRecords is a small three-level taxonomy with one extra root.
func SampleRecords() []taxonomy.Record {
	return []taxonomy.Record{
		{Name: "design", ClassName: "category", Title: "Design", Synonyms: []string{"ux"}},
		{Name: "web-design", Parent: Ptr("design"), ClassName: "skill", Title: "Web Design", Synonyms: []string{}},
		{Name: "css", Parent: Ptr("web-design"), ClassName: "skill", Title: "CSS", Synonyms: []string{"stylesheets"}},
		{Name: "data", ClassName: "category", Title: "Data", Synonyms: []string{}},
	}
}

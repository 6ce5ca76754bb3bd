package taxonservice_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/starford/taxonomy/internal/apperr"
	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/store"
	"github.com/starford/taxonomy/internal/taxonomy"
	"github.com/starford/taxonomy/internal/taxonservice"
	"github.com/starford/taxonomy/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sortedRecords(recs []taxonomy.Record) []taxonomy.Record {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs
}

func count(t *testing.T, db store.RecordStore) int {
	t.Helper()
	n, err := db.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func TestLoadThenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, f := range codec.Formats() {
		t.Run(string(f), func(t *testing.T) {
			src := testutil.SeedDB(t, testutil.SampleRecords()...)
			svc := taxonservice.NewService(src, quietLogger())

			var buf bytes.Buffer
			if err := svc.Load(ctx, &buf, f); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !strings.Contains(buf.String(), "design/web-design/css") {
				t.Errorf("document missing nested path:\n%s", buf.String())
			}

			dst := testutil.TestDB(t)
			res, err := taxonservice.NewService(dst, quietLogger()).Store(ctx, &buf, f)
			if err != nil {
				t.Fatalf("Store: %v", err)
			}
			if res.Entries != 4 || len(res.Warnings) != 0 {
				t.Errorf("result = %+v, want 4 entries and no warnings", res)
			}

			got, err := dst.Records(ctx)
			if err != nil {
				t.Fatalf("Records: %v", err)
			}
			if want := sortedRecords(testutil.SampleRecords()); !reflect.DeepEqual(sortedRecords(got), want) {
				t.Errorf("records = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSnapshotPaths(t *testing.T) {
	db := testutil.SeedDB(t, testutil.SampleRecords()...)
	m, err := taxonservice.NewService(db, quietLogger()).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	var keys []string
	for _, p := range m.Paths() {
		keys = append(keys, p.String())
	}
	want := []string{"data", "design", "design/web-design", "design/web-design/css"}
	if !slices.Equal(keys, want) {
		t.Errorf("paths = %v, want %v", keys, want)
	}
}

func TestSnapshotMissingParent(t *testing.T) {
	db := testutil.SeedDB(t, taxonomy.Record{Name: "a", Parent: testutil.Ptr("ghost"), Title: "A"})
	_, err := taxonservice.NewService(db, quietLogger()).Snapshot(context.Background())
	if !errors.Is(err, taxonomy.ErrMissingEntry) {
		t.Fatalf("err = %v, want ErrMissingEntry", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("err = %q, want ghost named", err)
	}
}

func TestSnapshotLogsWarnings(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	db := testutil.SeedDB(t, taxonomy.Record{Name: "a", Parent: testutil.Ptr("a"), Title: "lower case"})

	m, err := taxonservice.NewService(db, logger).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(m) != 1 {
		t.Errorf("len = %d, want 1", len(m))
	}
	for _, kind := range []string{`"kind":"title-case"`, `"kind":"self-parent"`} {
		if !strings.Contains(logs.String(), kind) {
			t.Errorf("logs missing %s:\n%s", kind, logs.String())
		}
	}
}

func TestLoad_MissingTable(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "t.db"), "projecttaxonomy")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	svc := taxonservice.NewService(db, quietLogger())

	var buf bytes.Buffer
	if err := svc.Load(ctx, &buf, codec.FormatTOML); !errors.Is(err, store.ErrNoTable) {
		t.Fatalf("Load err = %v, want ErrNoTable", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Load wrote %q on error", buf.String())
	}
	if err := svc.Ready(ctx); !errors.Is(err, store.ErrNoTable) {
		t.Errorf("Ready err = %v, want ErrNoTable", err)
	}
	tables, err := db.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("reads created tables: %v", tables)
	}
}

func TestStoreRejectsInvalidDocumentWithoutWriting(t *testing.T) {
	ctx := context.Background()
	db := testutil.SeedDB(t, testutil.SampleRecords()...)
	svc := taxonservice.NewService(db, quietLogger())

	in := `{"ok": {"class_name": "x", "synonyms": [], "title": "Ok"}, "Bad/path": {"class_name": "x", "synonyms": [], "title": "Bad"}}`
	if _, err := svc.Store(ctx, strings.NewReader(in), codec.FormatJSON); !errors.Is(err, taxonomy.ErrNotKebabCase) {
		t.Fatalf("err = %v, want ErrNotKebabCase", err)
	}
	if n := count(t, db); n != 4 {
		t.Errorf("count = %d, want existing 4 records untouched", n)
	}
}

func TestStoreRejectsMissingFieldWithoutWriting(t *testing.T) {
	ctx := context.Background()
	db := testutil.SeedDB(t, testutil.SampleRecords()...)
	svc := taxonservice.NewService(db, quietLogger())

	in := "[x]\nclass_name = \"category\"\n"
	if _, err := svc.Store(ctx, strings.NewReader(in), codec.FormatTOML); !errors.Is(err, taxonomy.ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
	if n := count(t, db); n != 4 {
		t.Errorf("count = %d, want existing 4 records untouched", n)
	}
}

func TestStoreRejectsEmptyDocument(t *testing.T) {
	ctx := context.Background()
	for _, f := range codec.Formats() {
		t.Run(string(f), func(t *testing.T) {
			db := testutil.SeedDB(t, testutil.SampleRecords()...)
			svc := taxonservice.NewService(db, quietLogger())

			if _, err := svc.Store(ctx, strings.NewReader(""), f); !errors.Is(err, taxonservice.ErrEmptyDocument) {
				t.Fatalf("Store err = %v, want ErrEmptyDocument", err)
			}
			if _, err := svc.Check(ctx, strings.NewReader("\n"), f); !errors.Is(err, taxonservice.ErrEmptyDocument) {
				t.Errorf("Check err = %v, want ErrEmptyDocument", err)
			}
			if n := count(t, db); n != 4 {
				t.Errorf("count = %d, want existing 4 records untouched", n)
			}
		})
	}
}

func TestStoreAllowEmptyClearsTable(t *testing.T) {
	ctx := context.Background()
	db := testutil.SeedDB(t, testutil.SampleRecords()...)
	svc := taxonservice.NewService(db, quietLogger())

	res, err := svc.Store(ctx, strings.NewReader("{}"), codec.FormatJSON, taxonservice.AllowEmpty())
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if res.Entries != 0 {
		t.Errorf("entries = %d, want 0", res.Entries)
	}
	if n := count(t, db); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestStoreReportsTitleWarnings(t *testing.T) {
	db := testutil.TestDB(t)
	in := "[x]\nclass_name = \"c\"\nsynonyms = []\ntitle = \"not title case\"\n"
	res, err := taxonservice.NewService(db, quietLogger()).Store(context.Background(), strings.NewReader(in), codec.FormatTOML)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if got := res.Warnings.Kinds(); !slices.Equal(got, []taxonomy.WarningKind{taxonomy.WarnTitleCase}) {
		t.Errorf("warning kinds = %v", got)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	svc := taxonservice.NewService(testutil.SeedDB(t, testutil.SampleRecords()...), quietLogger())

	d, err := svc.Lookup(ctx, "web-design")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.Path != "design/web-design" {
		t.Errorf("path = %q", d.Path)
	}
	if d.Parent == nil || *d.Parent != "design" {
		t.Errorf("parent = %v, want design", d.Parent)
	}
	if !slices.Equal(d.Children, []string{"css"}) {
		t.Errorf("children = %v, want [css]", d.Children)
	}

	root, err := svc.Lookup(ctx, "design")
	if err != nil {
		t.Fatalf("Lookup root: %v", err)
	}
	if root.Parent != nil {
		t.Errorf("root parent = %q, want nil", *root.Parent)
	}

	if _, err := svc.Lookup(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing entry err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Lookup(ctx, "Not Valid"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("invalid name err = %v, want ErrInvalid", err)
	}
}

func TestCheckDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	db := testutil.SeedDB(t, testutil.SampleRecords()...)
	svc := taxonservice.NewService(db, quietLogger())

	in := "x:\n  class_name: c\n  synonyms: []\n  title: X\nx/y:\n  class_name: c\n  synonyms: []\n  title: Y\n"
	res, err := svc.Check(ctx, strings.NewReader(in), codec.FormatYAML)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Entries != 2 || len(res.Warnings) != 0 {
		t.Errorf("result = %+v, want 2 entries and no warnings", res)
	}
	if n := count(t, db); n != 4 {
		t.Errorf("count = %d, check must not replace records", n)
	}
}

func TestCheckReportsCollision(t *testing.T) {
	svc := taxonservice.NewService(testutil.TestDB(t), quietLogger())
	in := `{"a/x": {"class_name": "c", "synonyms": [], "title": "X"}, "b/x": {"class_name": "c", "synonyms": [], "title": "X"}}`
	if _, err := svc.Check(context.Background(), strings.NewReader(in), codec.FormatJSON); !errors.Is(err, taxonomy.ErrDuplicateEntry) {
		t.Errorf("err = %v, want ErrDuplicateEntry", err)
	}
}

func TestReady(t *testing.T) {
	svc := taxonservice.NewService(testutil.TestDB(t), quietLogger())
	if err := svc.Ready(context.Background()); err != nil {
		t.Errorf("Ready: %v", err)
	}
}

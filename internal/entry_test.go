package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/store"
	"github.com/starford/taxonomy/internal/taxonservice"
)

func testOptions(t *testing.T) []Option {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "taxonomy.db")
	return []Option{
		WithConfig(cfg),
		WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	}
}

const threeLevels = `
[x]
class_name = "category"
synonyms = []
title = "X"

["x/y"]
class_name = "category"
synonyms = ["why"]
title = "Y"

["x/y/z"]
class_name = "skill"
synonyms = []
title = "Z"
`

func TestStoreThenLoad(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)

	res, err := Store(ctx, strings.NewReader(threeLevels), codec.FormatTOML, opts...)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if res.Entries != 3 {
		t.Errorf("entries = %d, want 3", res.Entries)
	}

	var out bytes.Buffer
	if err := Load(ctx, &out, codec.FormatYAML, opts...); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, want := range []string{"x/y/z:", "x/y:", "- why"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("load output missing %q:\n%s", want, out.String())
		}
	}
}

func tables(t *testing.T, cfg *Config) []string {
	t.Helper()
	db, err := store.Open(context.Background(), cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Table)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	names, err := db.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	return names
}

func TestCheckLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)

	res, err := Check(ctx, strings.NewReader(threeLevels), codec.FormatTOML, opts...)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Entries != 3 {
		t.Errorf("entries = %d, want 3", res.Entries)
	}

	app, _ := newApplication(opts)
	if got := tables(t, app.config); len(got) != 0 {
		t.Errorf("check created tables: %v", got)
	}
}

func TestLoadMissingTable(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	if _, err := Store(ctx, strings.NewReader(threeLevels), codec.FormatTOML, opts...); err != nil {
		t.Fatalf("Store: %v", err)
	}

	app, _ := newApplication(opts)
	typo := *app.config
	typo.Database.Table = "projecttaxonomy"
	typoOpts := append(opts, WithConfig(&typo))

	var out bytes.Buffer
	err := Load(ctx, &out, codec.FormatTOML, typoOpts...)
	if !errors.Is(err, store.ErrNoTable) {
		t.Fatalf("Load err = %v, want ErrNoTable", err)
	}
	if !strings.Contains(err.Error(), store.DefaultTable) {
		t.Errorf("err = %q, want existing table listed", err)
	}
	if out.Len() != 0 {
		t.Errorf("Load wrote %q on error", out.String())
	}
	if got := tables(t, &typo); !slices.Equal(got, []string{store.DefaultTable}) {
		t.Errorf("tables = %v, want only %s", got, store.DefaultTable)
	}
}

func TestStoreEmptyDocument(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	if _, err := Store(ctx, strings.NewReader(threeLevels), codec.FormatTOML, opts...); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if _, err := Store(ctx, strings.NewReader(""), codec.FormatYAML, opts...); !errors.Is(err, taxonservice.ErrEmptyDocument) {
		t.Fatalf("empty store err = %v, want ErrEmptyDocument", err)
	}
	var out bytes.Buffer
	if err := Load(ctx, &out, codec.FormatYAML, opts...); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(out.String(), "x/y/z:") {
		t.Errorf("refused empty store changed the table:\n%s", out.String())
	}

	res, err := Store(ctx, strings.NewReader(""), codec.FormatYAML, append(opts, WithAllowEmpty())...)
	if err != nil {
		t.Fatalf("Store with allow-empty: %v", err)
	}
	if res.Entries != 0 {
		t.Errorf("entries = %d, want 0", res.Entries)
	}
}

func TestEntryPointsRequireConfig(t *testing.T) {
	if err := Load(context.Background(), io.Discard, codec.FormatJSON); err == nil {
		t.Error("Load without config should fail")
	}
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}

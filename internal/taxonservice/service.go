package taxonservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/taxonomy/internal/apperr"
	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/store"
	"github.com/starford/taxonomy/internal/taxonomy"
)

// ErrEmptyDocument is returned when a document to store holds no entries
// and AllowEmpty was not given. Storing it would clear the table.
var ErrEmptyDocument = errors.New("document has no entries")

// StoreOption adjusts Store and Check.
type StoreOption func(*storeOptions)

type storeOptions struct {
	allowEmpty bool
}

// AllowEmpty lets an empty document through, so storing it clears the table.
func AllowEmpty() StoreOption {
	return func(o *storeOptions) { o.allowEmpty = true }
}

// EntryDetail describes one stored entry together with its position.
type EntryDetail struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Parent    *string  `json:"parent"`
	ClassName string   `json:"class_name"`
	Title     string   `json:"title"`
	Synonyms  []string `json:"synonyms"`
	Children  []string `json:"children"`
}

// StoreResult summarises a completed store.
type StoreResult struct {
	Entries  int
	Warnings taxonomy.Warnings
}

// Service converts between the record store and text documents.
type Service struct {
	store  store.RecordStore
	logger *slog.Logger
}

// NewService creates a new taxonomy service.
func NewService(st store.RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// Collection reads every record and validates it into a Collection.
func (s *Service) Collection(ctx context.Context) (taxonomy.Collection, error) {
	records, err := s.store.Records(ctx)
	if err != nil {
		return nil, err
	}
	c, warnings, err := taxonomy.CollectionFromRecords(records)
	warnings.Log(ctx, s.logger)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	return c, nil
}

// Snapshot reads the stored taxonomy and converts it to path-keyed form.
func (s *Service) Snapshot(ctx context.Context) (taxonomy.Map, error) {
	c, err := s.Collection(ctx)
	if err != nil {
		return nil, err
	}
	m, warnings, err := c.ToMap()
	warnings.Log(ctx, s.logger)
	if err != nil {
		return nil, fmt.Errorf("convert taxonomy collection to editable form: %w", err)
	}
	return m, nil
}

// Load writes the stored taxonomy to w in format f.
func (s *Service) Load(ctx context.Context, w io.Writer, f codec.Format) error {
	c, err := codec.For(f)
	if err != nil {
		return err
	}
	m, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := c.Encode(w, m.Document()); err != nil {
		return err
	}
	s.logger.Debug("load: encoded", slog.Int("entries", len(m)), slog.String("format", string(f)))
	return nil
}

// Check decodes a document in format f from r and converts it to the flat
// form without touching the store. It fails wherever Store would.
func (s *Service) Check(ctx context.Context, r io.Reader, f codec.Format, opts ...StoreOption) (*StoreResult, error) {
	coll, warnings, err := s.decode(ctx, r, f, opts)
	if err != nil {
		return nil, err
	}
	return &StoreResult{Entries: len(coll), Warnings: warnings}, nil
}

// Store decodes a document in format f from r and replaces every stored
// record with it. Nothing is written unless the whole document converts.
// An empty document fails with ErrEmptyDocument unless AllowEmpty is given.
func (s *Service) Store(ctx context.Context, r io.Reader, f codec.Format, opts ...StoreOption) (*StoreResult, error) {
	coll, warnings, err := s.decode(ctx, r, f, opts)
	if err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, coll.Records()); err != nil {
		return nil, err
	}
	s.logger.Info("store: replaced", slog.Int("entries", len(coll)), slog.String("format", string(f)))
	return &StoreResult{Entries: len(coll), Warnings: warnings}, nil
}

func (s *Service) decode(ctx context.Context, r io.Reader, f codec.Format, opts []StoreOption) (taxonomy.Collection, taxonomy.Warnings, error) {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	c, err := codec.For(f)
	if err != nil {
		return nil, nil, err
	}
	doc, err := c.Decode(r)
	if err != nil {
		return nil, nil, err
	}
	if len(doc) == 0 && !o.allowEmpty {
		return nil, nil, ErrEmptyDocument
	}
	m, warnings, err := taxonomy.ParseDocument(doc)
	warnings.Log(ctx, s.logger)
	if err != nil {
		return nil, warnings, fmt.Errorf("parse document: %w", err)
	}
	coll, err := m.IntoCollection()
	if err != nil {
		return nil, warnings, fmt.Errorf("convert document to collection: %w", err)
	}
	return coll, warnings, nil
}

// Ready reports whether the record store answers queries.
func (s *Service) Ready(ctx context.Context) error {
	_, err := s.store.Count(ctx)
	return err
}

// Lookup returns the stored entry named name along with its full path and
// direct children.
func (s *Service) Lookup(ctx context.Context, name string) (*EntryDetail, error) {
	id, err := taxonomy.ParseIdentifier(name)
	if err != nil {
		return nil, errors.Join(apperr.ErrInvalid, err)
	}
	c, err := s.Collection(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := c[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	p, warnings, err := c.FullPath(e)
	warnings.Log(ctx, s.logger)
	if err != nil {
		return nil, err
	}

	d := &EntryDetail{
		Name:      e.Name.String(),
		Path:      p.String(),
		ClassName: e.ClassName,
		Title:     e.Title.String(),
		Synonyms:  nonNilSlice(e.Synonyms),
		Children:  []string{},
	}
	if e.Parent != nil && *e.Parent != e.Name {
		parent := e.Parent.String()
		d.Parent = &parent
	}
	for _, child := range c.Children(id) {
		d.Children = append(d.Children, child.String())
	}
	return d, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

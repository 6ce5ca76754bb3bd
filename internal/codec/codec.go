// Package codec encodes and decodes the editable taxonomy document.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/starford/taxonomy/internal/taxonomy"
)

// Format names a text encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Codec reads and writes a taxonomy document in one format.
// Decoders reject fields that DocumentEntry does not declare, and decode
// empty input to an empty document in every format.
type Codec interface {
	Encode(w io.Writer, doc taxonomy.Document) error
	Decode(r io.Reader) (taxonomy.Document, error)
	ContentType() string
}

// Formats lists the supported formats, TOML first.
func Formats() []Format {
	return []Format{FormatTOML, FormatJSON, FormatYAML}
}

// ParseFormat matches s case-insensitively; "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("codec: unknown format %q", s)
}

// For returns the codec for f.
func For(f Format) (Codec, error) {
	switch f {
	case FormatTOML:
		return TOML{}, nil
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML:
		return YAML{}, nil
	}
	return nil, fmt.Errorf("codec: unknown format %q", f)
}

// --- TOML ---

// TOML encodes each path as a quoted table header.
type TOML struct{}

func (TOML) ContentType() string { return "application/toml; charset=utf-8" }

func (TOML) Encode(w io.Writer, doc taxonomy.Document) error {
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("codec: encode toml: %w", err)
	}
	return nil
}

func (TOML) Decode(r io.Reader) (taxonomy.Document, error) {
	doc := taxonomy.Document{}
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("codec: decode toml: %w", err)
	}
	return doc, nil
}

// --- JSON ---

// JSON writes an indented object keyed by path.
type JSON struct{}

func (JSON) ContentType() string { return "application/json; charset=utf-8" }

func (JSON) Encode(w io.Writer, doc taxonomy.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("codec: encode json: %w", err)
	}
	return nil
}

func (JSON) Decode(r io.Reader) (taxonomy.Document, error) {
	doc := taxonomy.Document{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	return doc, nil
}

// --- YAML ---

// YAML writes a mapping keyed by path.
type YAML struct{}

func (YAML) ContentType() string { return "application/yaml; charset=utf-8" }

func (YAML) Encode(w io.Writer, doc taxonomy.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("codec: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("codec: encode yaml: %w", err)
	}
	return nil
}

func (YAML) Decode(r io.Reader) (taxonomy.Document, error) {
	doc := taxonomy.Document{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("codec: decode yaml: %w", err)
	}
	return doc, nil
}

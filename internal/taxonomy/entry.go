// Package taxonomy converts a hierarchical taxonomy between its flat,
// parent-pointer form (Collection) and its path-keyed, editable form (Map).
package taxonomy

import "slices"

// CollectionEntry is a taxonomy node in flat form.
type CollectionEntry struct {
	ClassName string
	Name      Identifier
	Parent    *Identifier // nil for roots
	Synonyms  []string
	Title     Title
}

// IsRoot reports whether the entry has no parent pointer.
func (e CollectionEntry) IsRoot() bool { return e.Parent == nil }

// Equal compares every field, including the parent pointer's target.
func (e CollectionEntry) Equal(o CollectionEntry) bool {
	if e.ClassName != o.ClassName || e.Name != o.Name || e.Title != o.Title {
		return false
	}
	if (e.Parent == nil) != (o.Parent == nil) {
		return false
	}
	if e.Parent != nil && *e.Parent != *o.Parent {
		return false
	}
	return slices.Equal(e.Synonyms, o.Synonyms)
}

// mapEntry drops the flat-only fields.
func (e CollectionEntry) mapEntry() MapEntry {
	return MapEntry{
		ClassName: e.ClassName,
		Synonyms:  slices.Clone(e.Synonyms),
		Title:     e.Title,
	}
}

// MapEntry is a taxonomy node in path-keyed form. Its ancestry is carried
// entirely by the Path it is stored under.
type MapEntry struct {
	ClassName string
	Synonyms  []string
	Title     Title
}

// Record is the raw flat form exchanged with a record store. Nothing in it
// has been validated.
type Record struct {
	Name      string
	Parent    *string
	ClassName string
	Title     string
	Synonyms  []string
}

// DocumentEntry is the raw value side of a Document. A nil field was
// absent from the decoded input.
type DocumentEntry struct {
	ClassName *string   `json:"class_name" toml:"class_name" yaml:"class_name"`
	Synonyms  *[]string `json:"synonyms" toml:"synonyms" yaml:"synonyms"`
	Title     *string   `json:"title" toml:"title" yaml:"title"`
}

// NewDocumentEntry returns a DocumentEntry with every field present.
func NewDocumentEntry(className, title string, synonyms []string) DocumentEntry {
	synonyms = nonNil(synonyms)
	return DocumentEntry{ClassName: &className, Synonyms: &synonyms, Title: &title}
}

// missingField names the first absent field, or "" when all are set.
func (e DocumentEntry) missingField() string {
	switch {
	case e.ClassName == nil:
		return "class_name"
	case e.Synonyms == nil:
		return "synonyms"
	case e.Title == nil:
		return "title"
	}
	return ""
}

// Document is the raw, text-encodable form of a Map keyed by path string.
type Document map[string]DocumentEntry

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

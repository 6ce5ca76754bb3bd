package taxonomy

import (
	"fmt"
	"slices"
	"strings"
)

// Map is the editable form of a taxonomy: entries keyed by their full path.
type Map map[Path]MapEntry

// Paths returns the map's keys in lexical order.
func (m Map) Paths() []Path {
	paths := make([]Path, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, b Path) int { return strings.Compare(a.s, b.s) })
	return paths
}

// IntoCollection converts the map back to flat form. Each entry's name is
// the last segment of its path and its parent the second-to-last.
func (m Map) IntoCollection() (Collection, error) {
	c := make(Collection, len(m))
	for _, p := range m.Paths() {
		e := m[p]
		name, ok := p.Name()
		if !ok {
			return nil, &MalformedPathError{Path: p.String()}
		}
		var parent *Identifier
		if id, ok := p.Parent(); ok {
			parent = &id
		}
		if prev, dup := c[name]; dup {
			return nil, fmt.Errorf("%w: %q is named by more than one path (parent %s and %s)",
				ErrDuplicateEntry, name.String(), describeParent(prev.Parent), describeParent(parent))
		}
		c[name] = CollectionEntry{
			ClassName: e.ClassName,
			Name:      name,
			Parent:    parent,
			Synonyms:  slices.Clone(e.Synonyms),
			Title:     e.Title,
		}
	}
	return c, nil
}

// Document returns the raw, text-encodable form of m.
func (m Map) Document() Document {
	doc := make(Document, len(m))
	for p, e := range m {
		doc[p.String()] = NewDocumentEntry(e.ClassName, e.Title.String(), slices.Clone(e.Synonyms))
	}
	return doc
}

// ParseDocument validates a decoded document into a Map. Keys are parsed
// as paths and titles as Titles; the first failure is reported as an
// *EntryError. Every entry must carry all three fields, so a null or
// partial entry fails with ErrMissingField. Keys are visited in lexical
// order.
func ParseDocument(doc Document) (Map, Warnings, error) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	m := make(Map, len(doc))
	var warnings Warnings
	for _, k := range keys {
		raw := doc[k]
		p, err := ParsePath(k)
		if err != nil {
			return nil, nil, &EntryError{Key: k, Err: err}
		}
		if field := raw.missingField(); field != "" {
			return nil, nil, &EntryError{Key: k, Field: field, Err: ErrMissingField}
		}
		title, tw, err := ParseTitle(*raw.Title)
		if err != nil {
			return nil, nil, &EntryError{Key: k, Field: "title", Err: err}
		}
		warnings = append(warnings, tw...)
		m[p] = MapEntry{
			ClassName: *raw.ClassName,
			Synonyms:  slices.Clone(*raw.Synonyms),
			Title:     title,
		}
	}
	return m, warnings, nil
}

func describeParent(p *Identifier) string {
	if p == nil {
		return "<root>"
	}
	return fmt.Sprintf("%q", p.String())
}

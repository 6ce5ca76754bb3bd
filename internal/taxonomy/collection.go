package taxonomy

import (
	"fmt"
	"slices"
	"strings"
)

// Collection is the flat form of a taxonomy: entries keyed by their own
// name, each pointing at its parent by name.
type Collection map[Identifier]CollectionEntry

// NewCollection keys entries by name. A repeated name is an error.
func NewCollection(entries ...CollectionEntry) (Collection, error) {
	c := make(Collection, len(entries))
	for _, e := range entries {
		if _, dup := c[e.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name.String())
		}
		c[e.Name] = e
	}
	return c, nil
}

// CollectionFromRecords validates raw records into a Collection.
// The first invalid field is reported as a *RecordError.
func CollectionFromRecords(records []Record) (Collection, Warnings, error) {
	c := make(Collection, len(records))
	var warnings Warnings

	for _, r := range records {
		name, err := ParseIdentifier(r.Name)
		if err != nil {
			return nil, nil, &RecordError{Record: r.Name, Field: "name", Err: err}
		}

		var parent *Identifier
		if r.Parent != nil {
			p, err := ParseIdentifier(*r.Parent)
			if err != nil {
				return nil, nil, &RecordError{Record: r.Name, Field: "parent", Err: err}
			}
			parent = &p
		}

		title, tw, err := ParseTitle(r.Title)
		if err != nil {
			return nil, nil, &RecordError{Record: r.Name, Field: "title", Err: err}
		}
		warnings = append(warnings, tw...)

		if _, dup := c[name]; dup {
			return nil, nil, &RecordError{Record: r.Name, Field: "name", Err: ErrDuplicateEntry}
		}
		c[name] = CollectionEntry{
			ClassName: r.ClassName,
			Name:      name,
			Parent:    parent,
			Synonyms:  slices.Clone(r.Synonyms),
			Title:     title,
		}
	}
	return c, warnings, nil
}

// Names returns the collection's keys in lexical order.
func (c Collection) Names() []Identifier {
	names := make([]Identifier, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b Identifier) int { return strings.Compare(a.s, b.s) })
	return names
}

// Records returns the raw flat form of every entry, sorted by name.
func (c Collection) Records() []Record {
	out := make([]Record, 0, len(c))
	for _, name := range c.Names() {
		e := c[name]
		r := Record{
			Name:      e.Name.String(),
			ClassName: e.ClassName,
			Title:     e.Title.String(),
			Synonyms:  nonNil(slices.Clone(e.Synonyms)),
		}
		if e.Parent != nil {
			p := e.Parent.String()
			r.Parent = &p
		}
		out = append(out, r)
	}
	return out
}

// Children returns the names of entries whose parent is name, sorted.
func (c Collection) Children(name Identifier) []Identifier {
	var out []Identifier
	for _, child := range c.Names() {
		e := c[child]
		if e.Parent != nil && *e.Parent == name && child != name {
			out = append(out, child)
		}
	}
	return out
}

// FullPath walks e's parent pointers up to a root and returns the
// root-first path ending in e's own name.
//
// A parent pointer naming the entry itself is treated as no parent and
// reported as a WarnSelfParent warning. A parent that is not in c fails
// with *MissingEntryError; a walk that revisits an entry fails with
// *CycleError.
func (c Collection) FullPath(e CollectionEntry) (Path, Warnings, error) {
	chain := []Identifier{e.Name}
	seen := map[Identifier]struct{}{e.Name: {}}
	var warnings Warnings

	cur := e
	for cur.Parent != nil {
		parent := *cur.Parent
		if parent == cur.Name {
			warnings = append(warnings, Warning{
				Kind:    WarnSelfParent,
				Subject: cur.Name.String(),
				Message: fmt.Sprintf("Parent loop detected for entry '%s' - assuming None", cur.Name.String()),
			})
			break
		}
		next, ok := c[parent]
		if !ok {
			return Path{}, warnings, &MissingEntryError{Name: parent, Entry: e.Name}
		}
		if _, dup := seen[parent]; dup {
			return Path{}, warnings, &CycleError{Chain: append(chain, parent)}
		}
		seen[parent] = struct{}{}
		chain = append(chain, next.Name)
		cur = next
	}

	slices.Reverse(chain)
	return NewPath(chain...), warnings, nil
}

// ToMap converts the collection to its path-keyed form. Every entry is
// visited in name order; the first failing entry aborts the conversion.
func (c Collection) ToMap() (Map, Warnings, error) {
	m := make(Map, len(c))
	var warnings Warnings

	for _, name := range c.Names() {
		e := c[name]
		p, w, err := c.FullPath(e)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("full path of %q: %w", name.String(), err)
		}
		m[p] = e.mapEntry()
	}
	return m, warnings, nil
}

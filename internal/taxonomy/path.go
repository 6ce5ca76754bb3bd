package taxonomy

import "strings"

// Path is a root-first sequence of Identifiers joined with Separator.
// The last segment is the entry's own name; the rest are its ancestors.
type Path struct {
	s string
}

// NewPath joins ids into a Path.
func NewPath(ids ...Identifier) Path {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.s
	}
	return Path{s: strings.Join(parts, Separator)}
}

// ParsePath splits s on Separator and validates every segment.
// The first invalid segment is reported.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, Separator)
	ids := make([]Identifier, len(parts))
	for i, part := range parts {
		id, err := ParseIdentifier(part)
		if err != nil {
			return Path{}, err
		}
		ids[i] = id
	}
	return NewPath(ids...), nil
}

// MustPath is like ParsePath but panics on invalid input.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string { return p.s }

// IsZero reports whether p has no segments.
func (p Path) IsZero() bool { return p.s == "" }

// Segments returns the path's Identifiers, root first.
func (p Path) Segments() []Identifier {
	if p.s == "" {
		return nil
	}
	parts := strings.Split(p.s, Separator)
	ids := make([]Identifier, len(parts))
	for i, part := range parts {
		ids[i] = Identifier{s: part}
	}
	return ids
}

// Depth is the number of segments.
func (p Path) Depth() int {
	if p.s == "" {
		return 0
	}
	return strings.Count(p.s, Separator) + 1
}

// Name returns the last segment. It reports false for the zero Path.
func (p Path) Name() (Identifier, bool) {
	if p.s == "" {
		return Identifier{}, false
	}
	i := strings.LastIndex(p.s, Separator)
	return Identifier{s: p.s[i+1:]}, true
}

// Parent returns the second-to-last segment. It reports false for a
// single-segment (root) path.
func (p Path) Parent() (Identifier, bool) {
	i := strings.LastIndex(p.s, Separator)
	if i < 0 {
		return Identifier{}, false
	}
	head := p.s[:i]
	j := strings.LastIndex(head, Separator)
	return Identifier{s: head[j+1:]}, true
}

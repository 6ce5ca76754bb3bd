package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyIdentifier     = errors.New("identifier is empty")
	ErrIdentifierSeparator = errors.New("identifier contains a path separator")
	ErrNotKebabCase        = errors.New("identifier is not kebab-case")
	ErrTitleWhitespace     = errors.New("title has leading or trailing whitespace")
	ErrMissingEntry        = errors.New("missing entry")
	ErrMalformedPath       = errors.New("malformed path")
	ErrCycle               = errors.New("parent cycle")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrMissingField        = errors.New("missing field")
)

// ValidationError reports a raw string that failed Identifier or Title
// validation.
type ValidationError struct {
	Kind  string // "identifier" or "title"
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MissingEntryError is returned when a parent pointer does not resolve.
type MissingEntryError struct {
	Name  Identifier // the dangling parent
	Entry Identifier // the entry whose walk hit it
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("missing %q (parent chain of %q)", e.Name.String(), e.Entry.String())
}

func (e *MissingEntryError) Unwrap() error { return ErrMissingEntry }

// MalformedPathError is returned when a path has no name segment.
type MalformedPathError struct {
	Path string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("missing path name for %q", e.Path)
}

func (e *MalformedPathError) Unwrap() error { return ErrMalformedPath }

// CycleError is returned when a parent chain revisits an entry.
// Chain lists the walk from the starting entry up to the repeated name.
type CycleError struct {
	Chain []Identifier
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Chain))
	for i, id := range e.Chain {
		names[i] = id.String()
	}
	return fmt.Sprintf("parent cycle: %s", strings.Join(names, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// RecordError locates a failure on the flat read path.
type RecordError struct {
	Record string // raw name of the record, may be invalid itself
	Field  string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q: field %s: %v", e.Record, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// EntryError locates a failure while parsing a decoded document.
type EntryError struct {
	Key   string
	Field string
	Err   error
}

func (e *EntryError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entry %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("entry %q: field %s: %v", e.Key, e.Field, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

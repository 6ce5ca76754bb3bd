package taxonomy

import (
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Separator joins Identifiers into a Path.
const Separator = "/"

// identifierRules run in order; the first failing rule is reported.
var identifierRules = []validation.Rule{
	validation.By(func(v any) error {
		if v.(string) == "" {
			return ErrEmptyIdentifier
		}
		return nil
	}),
	validation.By(func(v any) error {
		if strings.Contains(v.(string), Separator) {
			return ErrIdentifierSeparator
		}
		return nil
	}),
	validation.By(func(v any) error {
		s := v.(string)
		if kebabCase(s) != s {
			return ErrNotKebabCase
		}
		return nil
	}),
}

// Identifier is a kebab-case token that cannot contain the path separator.
// The zero value is not a valid Identifier; build one with ParseIdentifier.
type Identifier struct {
	s string
}

// ParseIdentifier validates s and returns it as an Identifier.
func ParseIdentifier(s string) (Identifier, error) {
	if err := validation.Validate(s, identifierRules...); err != nil {
		return Identifier{}, &ValidationError{Kind: "identifier", Value: s, Err: err}
	}
	return Identifier{s: s}, nil
}

// MustIdentifier is like ParseIdentifier but panics on invalid input.
func MustIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identifier) String() string { return id.s }

// IsZero reports whether id was never parsed.
func (id Identifier) IsZero() bool { return id.s == "" }

// kebabCase splits s into words and joins them lowercased with hyphens.
// Word boundaries are any non-alphanumeric rune, a lower-to-upper
// transition ("fooBar"), and the end of an acronym ("HTMLParser").
// Digits belong to the word they touch.
func kebabCase(s string) string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return strings.Join(words, "-")
}

package taxonomy

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// smallWords stay lowercase inside a title unless they open or close it
// or follow a colon.
var smallWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {},
	"en": {}, "for": {}, "if": {}, "in": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "v": {}, "v.": {}, "via": {}, "vs": {}, "vs.": {},
}

// Title is a human-readable display string without surrounding whitespace.
type Title struct {
	s string
}

// ParseTitle validates s as a Title.
//
// Surrounding whitespace is a hard error. A title that is not in title case
// is accepted unchanged and reported as a WarnTitleCase warning.
func ParseTitle(s string) (Title, Warnings, error) {
	if strings.TrimSpace(s) != s {
		return Title{}, nil, &ValidationError{Kind: "title", Value: s, Err: ErrTitleWhitespace}
	}

	var warnings Warnings
	if tc := titleCase(s); tc != s {
		warnings = append(warnings, Warning{
			Kind:    WarnTitleCase,
			Subject: s,
			Message: fmt.Sprintf("Title %q should use title case %q", s, tc),
		})
	}
	return Title{s: s}, warnings, nil
}

// MustTitle is like ParseTitle but panics on a hard error and drops warnings.
func MustTitle(s string) Title {
	t, _, err := ParseTitle(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Title) String() string { return t.s }

// titleCase applies English title-casing rules to s, word by word.
// Runs of spaces are preserved.
func titleCase(s string) string {
	caser := cases.Title(language.English, cases.NoLower)

	words := strings.Split(s, " ")
	first, last := -1, -1
	for i, w := range words {
		if w == "" {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}

	afterColon := false
	for i, w := range words {
		if w == "" {
			continue
		}
		lower := strings.ToLower(w)
		_, small := smallWords[lower]
		switch {
		case small && i != first && i != last && !afterColon:
			words[i] = lower
		case hasInnerUpper(w) || strings.ContainsAny(w, "./@"):
			// iPhone, HTML, example.com: leave as written.
		default:
			words[i] = caser.String(w)
		}
		afterColon = strings.HasSuffix(w, ":")
	}
	return strings.Join(words, " ")
}

// hasInnerUpper reports whether any letter after the first is uppercase.
func hasInnerUpper(w string) bool {
	for i, r := range w {
		if i > 0 && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

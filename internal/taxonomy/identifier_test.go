package taxonomy

import (
	"errors"
	"testing"
)

func TestParseIdentifier_Rejects(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyIdentifier},
		{"a/b", ErrIdentifierSeparator},
		{"/", ErrIdentifierSeparator},
		{"UpperCase", ErrNotKebabCase},
		{"not_kebab", ErrNotKebabCase},
		{"double--hyphen", ErrNotKebabCase},
		{"-leading", ErrNotKebabCase},
		{"trailing-", ErrNotKebabCase},
		{"has space", ErrNotKebabCase},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := ParseIdentifier(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %T, want *ValidationError", err)
			}
			if verr.Value != tc.in || verr.Kind != "identifier" {
				t.Errorf("validation error = %+v", verr)
			}
		})
	}
}

func TestParseIdentifier_Accepts(t *testing.T) {
	for _, in := range []string{"kebab-case-ok", "root", "html5", "web-2-0", "café"} {
		id, err := ParseIdentifier(in)
		if err != nil {
			t.Errorf("ParseIdentifier(%q): %v", in, err)
			continue
		}
		if id.String() != in {
			t.Errorf("String() = %q, want %q", id.String(), in)
		}
		if id.IsZero() {
			t.Errorf("ParseIdentifier(%q) is zero", in)
		}
	}
}

func TestKebabCase(t *testing.T) {
	cases := map[string]string{
		"UpperCase":      "upper-case",
		"not_kebab":      "not-kebab",
		"HTMLParser":     "html-parser",
		"already-kebab":  "already-kebab",
		"  spaced  out ": "spaced-out",
		"v2Beta":         "v2-beta",
	}
	for in, want := range cases {
		if got := kebabCase(in); got != want {
			t.Errorf("kebabCase(%q) = %q, want %q", in, got, want)
		}
	}
}

// Package doi defines the DOI value type used as the deduplication key
// across every publication source.
package doi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// validPattern matches a registrant prefix (digits and dots), a slash,
// then a non-empty suffix. Searching instead of anchoring tolerates
// noise such as a leading "doi:" or a resolver URL around the value.
var validPattern = regexp.MustCompile(`[\d.]+/.+`)

// placeholders are literal non-values seen in upstream DOI fields.
var placeholders = map[string]bool{
	"":    true,
	"A":   true,
	"NA":  true,
	"n/a": true,
}

// DOI is a canonical DOI string. Construct with Parse; equality and map
// keying go through Key, which folds ASCII case only, so suffixes that
// differ in non-ASCII case stay distinct.
type DOI string

// InvalidDOIError reports a raw string carrying no usable DOI.
type InvalidDOIError struct {
	Raw    string
	Reason string
}

func (e *InvalidDOIError) Error() string {
	return fmt.Sprintf("invalid DOI %q: %s", e.Raw, e.Reason)
}

// IsInvalid reports whether err is an InvalidDOIError.
func IsInvalid(err error) bool {
	var invalid *InvalidDOIError
	return errors.As(err, &invalid)
}

// Parse extracts the canonical DOI from a raw source string.
func Parse(raw string) (DOI, error) {
	trimmed := strings.TrimSpace(raw)
	if placeholders[trimmed] {
		return "", &InvalidDOIError{Raw: raw, Reason: "no DOI"}
	}
	match := validPattern.FindString(trimmed)
	if match == "" {
		return "", &InvalidDOIError{Raw: raw, Reason: "malformed DOI"}
	}
	return DOI(match), nil
}

func (d DOI) String() string { return string(d) }

// Key returns the ASCII-lowercased projection used for equality and map
// keying.
func (d DOI) Key() string { return asciiLower(string(d)) }

// Equal reports whether two DOIs identify the same work, ignoring ASCII
// case only.
func (d DOI) Equal(other DOI) bool { return d.Key() == other.Key() }

// HasPrefix reports whether the DOI starts with prefix under the same
// ASCII-only case folding as Equal.
func (d DOI) HasPrefix(prefix string) bool {
	return strings.HasPrefix(d.Key(), asciiLower(prefix))
}

// asciiLower lowercases ASCII letters and leaves every other rune
// untouched, unlike strings.ToLower which also folds Unicode.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// Package roster loads the known-person table and matches publication
// authors against it.
package roster

import (
	"fmt"
	"regexp"
	"strings"
)

// Person is one row of the roster table.
type Person struct {
	Username string
	Given    string
	Family   string
	ORCID    string // canonical URL form, empty if none
}

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// SanitizeORCID normalizes a bare ORCID or any of its URL forms to the
// canonical https://orcid.org/ URL. An empty input stays empty.
func SanitizeORCID(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	id := raw[strings.LastIndex(raw, "/")+1:]
	if !orcidPattern.MatchString(id) {
		return "", fmt.Errorf("malformed ORCID id %q", raw)
	}
	return "https://orcid.org/" + id, nil
}

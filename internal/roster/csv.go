package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV reads the roster table. Rows are (username, given names,
// family names, ORCID or ORCID URL). Rows with the wrong field count
// are skipped; duplicate (family, given) rows keep the first
// occurrence; rows with a malformed ORCID keep the person without one.
// All three cases are reported in warnings.
func ParseCSV(data []byte) (people []Person, warnings []error, err error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 4

	type nameKey struct{ family, given string }
	seen := make(map[nameKey]bool)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			warnings = append(warnings, fmt.Errorf("skipping roster row: %w", err))
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parsing roster table: %w", err)
		}

		person := Person{Username: row[0], Given: row[1], Family: row[2]}
		person.ORCID, err = SanitizeORCID(row[3])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("person %q: %w", person.Username, err))
		}
		key := nameKey{family: person.Family, given: person.Given}
		if seen[key] {
			warnings = append(warnings, fmt.Errorf("duplicated person %q (%s %s) dropped", person.Username, person.Given, person.Family))
			continue
		}
		seen[key] = true
		people = append(people, person)
	}
	return people, warnings, nil
}

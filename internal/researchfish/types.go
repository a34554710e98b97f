package researchfish

import (
	"encoding/json"
	"fmt"
)

// FlexibleString can unmarshal from either string or number JSON
// values; the outcome feed is not consistent about which it sends for
// ids.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// json.Number accepts every valid JSON number literal, so anything
	// failing both branches is not a string or a number at all.
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// Outcome is one publication outcome from the reporting feed. The
// survey-coded field names come from the upstream schema: r1_2_19
// carries the DOI and r1_2 the publication type.
type Outcome struct {
	ID    FlexibleString `json:"id"`
	DOI   string         `json:"r1_2_19"`
	Type  string         `json:"r1_2"`
	Title string         `json:"title"`
}

// Package oa classifies open-access statuses into the labels used by
// the publications feed.
package oa

import "fmt"

// Status is an open-access status as reported by Unpaywall.
type Status string

const (
	Bronze Status = "bronze"
	Closed Status = "closed"
	Gold   Status = "gold"
	Green  Status = "green"
	Hybrid Status = "hybrid"
)

// labels maps every known status to its feed label. Hybrid counts as
// gold for the feed's purposes.
var labels = map[Status]string{
	Bronze: "Bronze Open Access",
	Closed: "No Open Access",
	Gold:   "Gold Open Access",
	Green:  "Green Open Access",
	Hybrid: "Gold Open Access",
}

// Known reports whether s belongs to the status vocabulary.
func Known(s Status) bool {
	_, ok := labels[s]
	return ok
}

// Label returns the feed label for s. Statuses are validated where
// they enter the system, so an unknown value here is a programming
// error, not bad upstream data.
func Label(s Status) string {
	label, ok := labels[s]
	if !ok {
		panic(fmt.Sprintf("oa: no label for status %q", s))
	}
	return label
}

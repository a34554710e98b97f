// Package legacy parses the previously published publications feed, so
// records that already went out keep their old identifiers and
// manually curated contributor lists.
package legacy

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pubsync/pubsync/internal/doi"
)

// Entry is one usable publication from the export.
type Entry struct {
	DOI            doi.DOI
	OldID          string
	ContributorIDs []string
}

// publication mirrors one element of the export document.
type publication struct {
	ID             string `xml:"id"`
	DOI            string `xml:"DOI"`
	Title          string `xml:"Title"`
	Category       string `xml:"Category"`
	ContributorIDs string `xml:"ContributorIds"`
}

type document struct {
	XMLName      xml.Name      `xml:"publications"`
	Publications []publication `xml:"publication"`
}

// Parse reads the export document and returns its entries in document
// order. Entries without a usable DOI are dropped and reported in
// skipped; only a malformed document fails the whole import.
func Parse(data []byte) (entries []Entry, skipped []error, err error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing publications feed: %w", err)
	}

	for _, pub := range doc.Publications {
		d, err := doi.Parse(pub.DOI)
		if err != nil {
			skipped = append(skipped, fmt.Errorf(
				"publication %q (doi %q; title %q; category %q): %w",
				pub.ID, pub.DOI, pub.Title, pub.Category, err))
			continue
		}
		entries = append(entries, Entry{
			DOI:            d,
			OldID:          pub.ID,
			ContributorIDs: splitContributorIDs(pub.ContributorIDs),
		})
	}
	return entries, skipped, nil
}

// splitContributorIDs splits the comma-separated id list, dropping
// padding and empty slots.
func splitContributorIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

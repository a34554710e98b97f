// Package record holds the publication aggregate assembled from every
// source, keyed by DOI.
package record

import (
	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/oa"
)

// Kind is the closed set of publication kinds the feed accepts.
type Kind string

const (
	JournalArticle     Kind = "journal-article"
	BookChapter        Kind = "book-chapter"
	Preprint           Kind = "preprint"
	ProceedingsArticle Kind = "proceedings-article"
)

// KnownKind reports whether k is one of the accepted kinds.
func KnownKind(k Kind) bool {
	switch k {
	case JournalArticle, BookChapter, Preprint, ProceedingsArticle:
		return true
	}
	return false
}

// Date is a publication date with optional month and day.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// Author is a single creator. Individuals carry family names, optional
// given names and an optional ORCID; consortium attributions have only
// Name set. Exactly one of Family and Name is non-empty.
type Author struct {
	Family string `json:"family,omitempty"`
	Given  string `json:"given,omitempty"`
	Name   string `json:"name,omitempty"`
	ORCID  string `json:"orcid,omitempty"` // verbatim from the registry
}

// Person reports whether the author is an individual rather than a
// consortium attribution.
func (a Author) Person() bool { return a.Family != "" }

// Metadata is the normalized registry metadata for one publication. A
// nil *Metadata on a Record means normalization has not succeeded; a
// non-nil one carries every field its Kind requires.
type Metadata struct {
	Title          string    `json:"title"`
	Kind           Kind      `json:"type"`
	ContainerTitle string    `json:"container_title"`
	SeriesTitle    string    `json:"series_title,omitempty"` // book chapters only
	Volume         string    `json:"volume,omitempty"`
	Pages          string    `json:"pages,omitempty"`
	Authors        []Author  `json:"authors"`
	Issued         Date      `json:"issued"`
	OAStatus       oa.Status `json:"oa_status"`
}

// LegacyEntry is one publication carried over from the legacy export.
type LegacyEntry struct {
	OldID          string
	ContributorIDs []string
}

// SourceEntry is one raw outcome pulled from the grant platform.
type SourceEntry struct {
	ID       string
	RawDOI   string
	TypeCode string
	Title    string
}

// Record accumulates everything known about one DOI.
type Record struct {
	DOI           doi.DOI
	LegacyEntries []LegacyEntry
	SourceEntries []SourceEntry
	Meta          *Metadata
}

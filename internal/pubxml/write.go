// Package pubxml renders the reconciled record set as the publications
// feed consumed by the website.
package pubxml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pubsync/pubsync/internal/oa"
	"github.com/pubsync/pubsync/internal/record"
	"github.com/pubsync/pubsync/internal/roster"
)

// categories maps publication kinds to the feed's category table.
// Proceedings articles share the book-chapter category.
var categories = map[record.Kind]struct {
	ID    string
	Label string
}{
	record.JournalArticle:     {"1", "Journal Article"},
	record.BookChapter:        {"2", "Book chapter"},
	record.Preprint:           {"124", "PrePrint"},
	record.ProceedingsArticle: {"2", "Book chapter"},
}

// Writer renders records into the feed schema.
type Writer struct {
	organisation string
	matcher      *roster.Matcher
}

// NewWriter returns a Writer stamping organisation on every entry and
// resolving contributor usernames through matcher.
func NewWriter(organisation string, matcher *roster.Matcher) *Writer {
	return &Writer{organisation: organisation, matcher: matcher}
}

// publicationElement fixes the output element order. JournalName is
// always emitted, empty for the book-chapter category; the other
// optional slots are omitted when absent.
type publicationElement struct {
	XMLName         xml.Name `xml:"publication"`
	ID              string   `xml:"id"`
	Organisation    string   `xml:"Organisation"`
	Category        string   `xml:"Category"`
	CategoryID      string   `xml:"CategoryID"`
	Title           string   `xml:"Title"`
	DOI             string   `xml:"DOI"`
	JournalName     string   `xml:"JournalName"`
	BookTitle       string   `xml:"BookTitle,omitempty"`
	SeriesTitle     string   `xml:"SeriesTitle,omitempty"`
	JournalVolume   string   `xml:"JournalVolume,omitempty"`
	JournalPages    string   `xml:"JournalPages,omitempty"`
	ContributorIDs  string   `xml:"ContributorIds"`
	ContributorList string   `xml:"ContributorList"`
	Year            string   `xml:"Year,omitempty"`
	Month           string   `xml:"Month,omitempty"`
	Day             string   `xml:"Day,omitempty"`
	OpenAccess      string   `xml:"OpenAccess"`
}

type feed struct {
	XMLName      xml.Name `xml:"publications"`
	Publications []publicationElement
}

// Render serializes every enriched record, most recently merged first.
// Unenriched records are left out; their diagnostics were logged when
// enrichment failed.
func (w *Writer) Render(set *record.Set) ([]byte, error) {
	var out feed
	dois := set.DOIs()
	for i := len(dois) - 1; i >= 0; i-- {
		rec := set.Get(dois[i])
		if rec.Meta == nil {
			continue
		}
		out.Publications = append(out.Publications, w.element(rec))
	}
	body, err := xml.MarshalIndent(out, "", "\t")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func (w *Writer) element(rec *record.Record) publicationElement {
	meta := rec.Meta
	label, categoryID := categoryRow(meta.Kind)
	el := publicationElement{
		ID:              rec.DOI.String(),
		Organisation:    w.organisation,
		Category:        label,
		CategoryID:      categoryID,
		Title:           meta.Title,
		DOI:             rec.DOI.String(),
		JournalVolume:   meta.Volume,
		JournalPages:    meta.Pages,
		ContributorIDs:  strings.Join(w.contributorIDs(rec), ", "),
		ContributorList: contributorList(meta.Authors),
		OpenAccess:      oa.Label(meta.OAStatus),
	}
	if categoryID == "2" {
		el.BookTitle = meta.ContainerTitle
		el.SeriesTitle = meta.SeriesTitle
	} else {
		el.JournalName = meta.ContainerTitle
	}
	if meta.Issued.Year != 0 {
		el.Year = strconv.Itoa(meta.Issued.Year)
	}
	if meta.Issued.Month != 0 {
		el.Month = strconv.Itoa(meta.Issued.Month)
	}
	if meta.Issued.Day != 0 {
		el.Day = strconv.Itoa(meta.Issued.Day)
	}
	return el
}

// categoryRow looks up the category table. The normalizers only emit
// known kinds, so a miss is a table out of step with record.Kind.
func categoryRow(kind record.Kind) (label, id string) {
	row, ok := categories[kind]
	if !ok {
		panic(fmt.Sprintf("pubxml: no category for publication kind %q", kind))
	}
	return row.Label, row.ID
}

// contributorIDs merges matched usernames with the ids carried from
// the legacy feed, deduplicated in first-seen order.
func (w *Writer) contributorIDs(rec *record.Record) []string {
	var ids []string
	for _, author := range rec.Meta.Authors {
		ids = append(ids, w.matcher.Username(author))
	}
	for _, entry := range rec.LegacyEntries {
		ids = append(ids, entry.ContributorIDs...)
	}
	return uniq(ids)
}

// uniq keeps the first occurrence of each value, dropping blanks.
func uniq(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// contributorList renders the display names, family name followed by
// the initials of each given-name word.
func contributorList(authors []record.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, displayName(a))
	}
	return strings.Join(names, ", ")
}

func displayName(a record.Author) string {
	if a.Family == "" {
		return a.Name
	}
	if a.Given == "" {
		return a.Family
	}
	var initials strings.Builder
	for _, word := range strings.Fields(a.Given) {
		r, _ := utf8.DecodeRuneInString(word)
		initials.WriteRune(r)
	}
	return a.Family + " " + initials.String()
}

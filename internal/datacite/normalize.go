package datacite

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/oa"
	"github.com/pubsync/pubsync/internal/record"
)

// resourceKinds maps DataCite's general resource types onto the
// normalized publication kinds. "Text" covers preprint servers that
// never set a finer type.
var resourceKinds = map[string]record.Kind{
	"JournalArticle":  record.JournalArticle,
	"BookChapter":     record.BookChapter,
	"ConferencePaper": record.ProceedingsArticle,
	"Preprint":        record.Preprint,
	"Text":            record.Preprint,
}

// zenodoPrefix marks DOIs minted by Zenodo. Some publishers register a
// work with Crossref and deposit a Zenodo copy as well; those records
// have no container and are dropped as duplicates.
const zenodoPrefix = "10.5281/zenodo."

// Normalizer turns DataCite DOI records into normalized publication
// metadata.
type Normalizer struct {
	client *Client
}

// NewNormalizer returns a Normalizer fetching records through client.
func NewNormalizer(client *Client) *Normalizer {
	return &Normalizer{client: client}
}

// Normalize fetches the DataCite record for d and maps it to the
// common metadata shape. Conditions the mapping cannot handle are
// returned as errors; known publisher-side duplicates are returned as
// a record.SkipError.
func (n *Normalizer) Normalize(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
	attrs, err := n.client.Attributes(ctx, d)
	if err != nil {
		return nil, err
	}

	kind, ok := resourceKinds[attrs.Types.ResourceTypeGeneral]
	if !ok {
		return nil, fmt.Errorf("unknown resource type %q", attrs.Types.ResourceTypeGeneral)
	}

	meta := &record.Metadata{
		Kind:   kind,
		Volume: attrs.Container.Volume,
		Pages:  pages(attrs.Container),
		// DataCite does not expose open-access status; its records
		// are served by open repositories.
		OAStatus: oa.Green,
	}

	meta.Title, err = title(attrs)
	if err != nil {
		return nil, err
	}

	meta.ContainerTitle, err = containerTitle(attrs, d, kind)
	if err != nil {
		return nil, err
	}

	meta.Authors, err = mapCreators(attrs.Creators)
	if err != nil {
		return nil, err
	}

	meta.Issued, err = issuedDate(attrs.Dates)
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// title returns the first non-empty title.
func title(attrs *Attributes) (string, error) {
	for _, t := range attrs.Titles {
		if t.Title != "" {
			return t.Title, nil
		}
	}
	return "", fmt.Errorf("publication has no title")
}

// containerTitle resolves the venue. Preprints take the publisher
// name; anything else must carry a container, except the Zenodo
// duplicate case which skips the whole record.
func containerTitle(attrs *Attributes, d doi.DOI, kind record.Kind) (string, error) {
	if kind == record.Preprint {
		if attrs.Publisher == "" {
			return "", fmt.Errorf("preprint has no publisher")
		}
		return attrs.Publisher, nil
	}
	if attrs.Container.Title == "" {
		if d.HasPrefix(zenodoPrefix) {
			return "", &record.SkipError{Reason: "Zenodo copy of a publication registered elsewhere"}
		}
		return "", fmt.Errorf("publication of type %s has no container", kind)
	}
	return attrs.Container.Title, nil
}

// pages synthesizes a page range from the container bounds.
func pages(c Container) string {
	if c.FirstPage != "" && c.LastPage != "" {
		return c.FirstPage + "-" + c.LastPage
	}
	return c.FirstPage
}

// mapCreators converts the creators list, pulling ORCIDs out of the
// name identifiers.
func mapCreators(creators []Creator) ([]record.Author, error) {
	if len(creators) == 0 {
		return nil, fmt.Errorf("publication has no creators")
	}
	authors := make([]record.Author, 0, len(creators))
	for _, c := range creators {
		orcid := creatorORCID(c)
		switch {
		case c.FamilyName != "":
			authors = append(authors, record.Author{Family: c.FamilyName, Given: c.GivenName, ORCID: orcid})
		case c.Name != "":
			authors = append(authors, record.Author{Name: c.Name, ORCID: orcid})
		default:
			return nil, fmt.Errorf("creator entry carries neither family nor consortium name")
		}
	}
	return authors, nil
}

func creatorORCID(c Creator) string {
	for _, id := range c.NameIdentifiers {
		if id.NameIdentifierScheme == "ORCID" {
			return id.NameIdentifier
		}
	}
	return ""
}

// issuedDate finds the Issued entry and parses its date portion.
// Timestamps are truncated to the leading YYYY-MM-DD.
func issuedDate(dates []DateEntry) (record.Date, error) {
	for _, entry := range dates {
		if entry.DateType != "Issued" {
			continue
		}
		return parseDate(entry.Date), nil
	}
	return record.Date{}, fmt.Errorf("publication has no issued date")
}

func parseDate(raw string) record.Date {
	if len(raw) > 10 {
		raw = raw[:10]
	}
	var date record.Date
	parts := strings.Split(raw, "-")
	if len(parts) >= 1 {
		if y, err := strconv.Atoi(parts[0]); err == nil {
			date.Year = y
		}
	}
	if len(parts) >= 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			date.Month = m
		}
	}
	if len(parts) >= 3 {
		if d, err := strconv.Atoi(parts[2]); err == nil && d >= 1 && d <= 31 {
			date.Day = d
		}
	}
	return date
}

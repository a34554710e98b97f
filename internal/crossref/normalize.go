package crossref

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/record"
	"github.com/pubsync/pubsync/internal/unpaywall"
)

// knownBookSeries lists the series titles that can show up alongside a
// book title in a chapter's container-title pair. Crossref does not
// mark which of the two entries is the series, so membership here is
// the only way to tell them apart.
var knownBookSeries = map[string]bool{
	"Advances in Experimental Medicine and Biology": true,
	"Advances in Microbial Physiology":              true,
	"Compendium of Plant Genomes":                   true,
	"Genome Dynamics":                               true,
	"Lecture Notes in Computer Science":             true,
	"Methods in Cell Biology":                       true,
	"Methods in Enzymology":                         true,
	"Methods in Molecular Biology":                  true,
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Normalizer turns Crossref work records into normalized publication
// metadata, with open-access status looked up via Unpaywall.
type Normalizer struct {
	client *Client
	oa     *unpaywall.Client
	series map[string]bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithKnownSeries replaces the book-series allow-list used for
// chapter container disambiguation.
func WithKnownSeries(series []string) Option {
	return func(n *Normalizer) {
		n.series = make(map[string]bool, len(series))
		for _, s := range series {
			n.series[s] = true
		}
	}
}

// NewNormalizer returns a Normalizer fetching works through client and
// OA status through oa.
func NewNormalizer(client *Client, oa *unpaywall.Client, opts ...Option) *Normalizer {
	n := &Normalizer{client: client, oa: oa, series: knownBookSeries}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize fetches the Crossref record for d and maps it to the
// common metadata shape. Any schema condition the mapping cannot
// handle is returned as an error so the caller can contain it to this
// one record.
func (n *Normalizer) Normalize(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
	work, err := n.client.Work(ctx, d)
	if err != nil {
		return nil, err
	}

	kind, err := workKind(work)
	if err != nil {
		return nil, err
	}

	meta := &record.Metadata{
		Title:  normalizeTitle(work.Title),
		Kind:   kind,
		Volume: work.Volume,
		Pages:  work.Page,
	}

	meta.ContainerTitle, meta.SeriesTitle, err = n.containerTitle(work, d, kind)
	if err != nil {
		return nil, err
	}

	meta.Authors, err = mapAuthors(work.Author)
	if err != nil {
		return nil, err
	}

	meta.Issued, err = issuedDate(work)
	if err != nil {
		return nil, err
	}

	meta.OAStatus, err = n.oa.Status(ctx, d)
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// workKind maps the Crossref type to the normalized publication kind.
// "posted-content" is an umbrella type whose subtype carries the real
// kind, and only the preprint subtype is expected.
func workKind(work *Work) (record.Kind, error) {
	typ := work.Type
	if typ == "posted-content" {
		if work.Subtype != "preprint" {
			return "", fmt.Errorf("publication of type %q has unknown subtype %q", typ, work.Subtype)
		}
		typ = work.Subtype
	}
	kind := record.Kind(typ)
	if !record.KnownKind(kind) {
		return "", fmt.Errorf("unknown publication type %q", typ)
	}
	return kind, nil
}

// normalizeTitle joins the title parts into a single line: tags
// deleted, entities decoded, whitespace collapsed. Tags leave no
// residue, so markup inside a word does not split it.
func normalizeTitle(parts []string) string {
	joined := strings.Join(parts, " ")
	stripped := tagPattern.ReplaceAllString(joined, "")
	unescaped := html.UnescapeString(stripped)
	return strings.Join(strings.Fields(unescaped), " ")
}

// containerTitle resolves the venue fields from the container-title
// list, whose meaning depends on its arity.
func (n *Normalizer) containerTitle(work *Work, d doi.DOI, kind record.Kind) (container, series string, err error) {
	titles := work.ContainerTitle
	switch len(titles) {
	case 0:
		if kind != record.Preprint {
			return "", "", fmt.Errorf("publication of type %s has no container title", kind)
		}
		container, err = n.preprintVenue(work, d)
		return container, "", err
	case 1:
		return titles[0], "", nil
	case 2:
		if kind != record.BookChapter {
			return "", "", fmt.Errorf("publication of type %s has %d container titles", kind, len(titles))
		}
		// The book title and the series title come in no fixed order.
		switch {
		case n.series[titles[0]]:
			return titles[1], titles[0], nil
		case n.series[titles[1]]:
			return titles[0], titles[1], nil
		default:
			return "", "", fmt.Errorf("container titles %q include no known book series", titles)
		}
	default:
		return "", "", fmt.Errorf("publication of type %s has %d container titles", kind, len(titles))
	}
}

// preprintVenue infers the venue of a preprint that carries no
// container title. The checks run in a fixed priority order; changing
// it changes which venue wins for publishers matching more than one
// rule.
func (n *Normalizer) preprintVenue(work *Work, d doi.DOI) (string, error) {
	if len(work.Institution) > 0 {
		if len(work.Institution) != 1 {
			return "", fmt.Errorf("preprint lists %d institutions", len(work.Institution))
		}
		return work.Institution[0].Name, nil
	}
	if strings.Contains(work.Publisher, "Research Square") {
		return "Research Square", nil
	}
	if strings.Contains(work.Publisher, "PeerJ") || d.HasPrefix("10.37044/osf.io/") {
		// PeerJ Preprints and BioHackrXiv record the venue as the
		// group title.
		if work.GroupTitle == "" {
			return "", fmt.Errorf("preprint from %q has no group title", work.Publisher)
		}
		return work.GroupTitle, nil
	}
	if d.HasPrefix("10.17504/protocols.io.") {
		return "protocols.io", nil
	}
	return "", fmt.Errorf("cannot determine preprint venue for publisher %q", work.Publisher)
}

// mapAuthors converts the raw author list. Missing authors are an
// upstream metadata defect the publisher has to fix, so they fail the
// record rather than producing an authorless entry.
func mapAuthors(contributors []Contributor) ([]record.Author, error) {
	if len(contributors) == 0 {
		return nil, fmt.Errorf("publication has no authors")
	}
	authors := make([]record.Author, 0, len(contributors))
	for _, c := range contributors {
		switch {
		case c.Family != "":
			authors = append(authors, record.Author{Family: c.Family, Given: c.Given, ORCID: c.ORCID})
		case c.Name != "":
			authors = append(authors, record.Author{Name: c.Name, ORCID: c.ORCID})
		default:
			return nil, fmt.Errorf("author entry carries neither family nor consortium name")
		}
	}
	return authors, nil
}

// issuedDate extracts the earliest known publication date. The issued
// field holds one date-parts triple whose members may be null and
// whose month and day may be missing entirely.
func issuedDate(work *Work) (record.Date, error) {
	parts := work.Issued.DateParts
	if len(parts) == 0 {
		return record.Date{}, fmt.Errorf("publication has no issued date")
	}
	first := parts[0]
	return record.Date{
		Year:  datePart(first, 0),
		Month: datePart(first, 1),
		Day:   datePart(first, 2),
	}, nil
}

func datePart(parts []*int, i int) int {
	if i >= len(parts) || parts[i] == nil {
		return 0
	}
	return *parts[i]
}

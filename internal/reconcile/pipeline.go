// Package reconcile runs the reconciliation pass: seed from the legacy
// feed, pull the platform outcomes, then enrich every DOI with
// normalized registry metadata.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/legacy"
	"github.com/pubsync/pubsync/internal/record"
	"github.com/pubsync/pubsync/internal/researchfish"
)

// outcomeSource lists reported publication outcomes.
type outcomeSource interface {
	PublicationOutcomes(ctx context.Context, maxPages int) ([]researchfish.Outcome, error)
}

// agencyResolver names the registration agency holding a DOI.
type agencyResolver interface {
	Agency(ctx context.Context, d doi.DOI) (string, error)
}

// normalizer turns registry metadata for a DOI into the common shape.
type normalizer interface {
	Normalize(ctx context.Context, d doi.DOI) (*record.Metadata, error)
}

// Pipeline drives one reconciliation run. Construct with New.
type Pipeline struct {
	platform outcomeSource
	resolver agencyResolver
	crossref normalizer
	datacite normalizer
	fetch    *fetch.Client
	broken   map[string]string // folded DOI key -> reason
	log      zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBrokenDOIs registers DOIs whose upstream records are known to be
// wrong. They are never enriched; the reason is logged instead.
func WithBrokenDOIs(reasons map[string]string) Option {
	return func(p *Pipeline) {
		for raw, reason := range reasons {
			key := doi.DOI(raw).Key()
			if d, err := doi.Parse(raw); err == nil {
				key = d.Key()
			}
			p.broken[key] = reason
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New returns a Pipeline pulling outcomes from platform, resolving
// agencies through resolver, normalizing per agency, and fetching the
// legacy feed with fc.
func New(platform outcomeSource, resolver agencyResolver, crossrefNorm, dataciteNorm normalizer, fc *fetch.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		platform: platform,
		resolver: resolver,
		crossref: crossrefNorm,
		datacite: dataciteNorm,
		fetch:    fc,
		broken:   make(map[string]string),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Options controls one reconciliation run.
type Options struct {
	// LegacyFeedURL is where the previously published feed lives.
	// Empty skips seeding.
	LegacyFeedURL string

	// MaxPages caps the outcome feed pages pulled; zero or negative
	// pulls all of them.
	MaxPages int
}

// Run executes the full pass and returns the record set, enriched
// where possible. The only error that aborts the run is systemic:
// retries exhausted against an upstream service, or a feed that cannot
// be read at all.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*record.Set, error) {
	set := record.NewSet()

	if err := p.SeedLegacy(ctx, set, opts.LegacyFeedURL); err != nil {
		return nil, err
	}
	p.log.Info().Int("dois", set.Len()).Msg("seeded from legacy feed")

	if err := p.PullPlatform(ctx, set, opts.MaxPages); err != nil {
		return nil, err
	}
	p.log.Info().Int("dois", set.Len()).Msg("merged platform outcomes")

	if err := p.Enrich(ctx, set); err != nil {
		return nil, err
	}
	p.log.Info().Int("enriched", set.Enriched()).Int("dois", set.Len()).Msg("enrichment finished")

	return set, nil
}

// SeedLegacy loads the previously published feed into set, so old
// identifiers and curated contributor lists survive into the next
// export.
func (p *Pipeline) SeedLegacy(ctx context.Context, set *record.Set, feedURL string) error {
	if feedURL == "" {
		p.log.Warn().Msg("legacy feed URL not configured, starting empty")
		return nil
	}
	body, err := p.fetch.Get(ctx, feedURL, nil, nil)
	if err != nil {
		return fmt.Errorf("fetching legacy feed: %w", err)
	}
	entries, skipped, err := legacy.Parse(body)
	if err != nil {
		return err
	}
	for _, skip := range skipped {
		p.log.Warn().Err(skip).Msg("skipping legacy publication")
	}
	for _, entry := range entries {
		rec := set.GetOrCreate(entry.DOI)
		rec.LegacyEntries = append(rec.LegacyEntries, record.LegacyEntry{
			OldID:          entry.OldID,
			ContributorIDs: entry.ContributorIDs,
		})
	}
	return nil
}

// PullPlatform folds the reported outcomes into set. Outcomes without
// a usable DOI are logged and dropped; everything else accumulates
// under its canonical DOI in arrival order.
func (p *Pipeline) PullPlatform(ctx context.Context, set *record.Set, maxPages int) error {
	outcomes, err := p.platform.PublicationOutcomes(ctx, maxPages)
	if err != nil {
		return fmt.Errorf("pulling platform outcomes: %w", err)
	}
	p.log.Info().Int("outcomes", len(outcomes)).Msg("pulled platform outcomes")

	for _, outcome := range outcomes {
		d, err := doi.Parse(outcome.DOI)
		if err != nil {
			p.log.Warn().
				Str("id", outcome.ID.String()).
				Str("doi", outcome.DOI).
				Str("title", outcome.Title).
				Str("type", outcome.Type).
				Err(err).
				Msg("skipping platform outcome")
			continue
		}
		rec := set.GetOrCreate(d)
		rec.SourceEntries = append(rec.SourceEntries, record.SourceEntry{
			ID:       outcome.ID.String(),
			RawDOI:   outcome.DOI,
			TypeCode: outcome.Type,
			Title:    outcome.Title,
		})
	}
	return nil
}

// Enrich attaches normalized metadata to every record it can. Faults
// stay contained to their record; exhausted retries abort the whole
// run because partial output would misrepresent upstream state.
func (p *Pipeline) Enrich(ctx context.Context, set *record.Set) error {
	for _, d := range set.DOIs() {
		if reason, ok := p.broken[d.Key()]; ok {
			p.log.Warn().Str("doi", d.String()).Str("reason", reason).Msg("skipping known-broken DOI")
			continue
		}
		meta, err := p.enrichOne(ctx, d)
		switch {
		case err == nil:
			set.Get(d).Meta = meta
		case fetch.IsExhausted(err):
			return err
		case record.IsSkip(err):
			p.log.Warn().Str("doi", d.String()).Err(err).Msg("skipping publication")
		default:
			p.log.Error().Str("doi", d.String()).Err(err).Msg("skipping publication")
		}
	}
	return nil
}

// enrichOne resolves the registration agency for d and runs the
// matching normalizer.
func (p *Pipeline) enrichOne(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
	agency, err := p.resolver.Agency(ctx, d)
	if err != nil {
		return nil, err
	}
	switch agency {
	case "Crossref":
		return p.crossref.Normalize(ctx, d)
	case "DataCite":
		return p.datacite.Normalize(ctx, d)
	default:
		return nil, fmt.Errorf("unknown registration agency %q", agency)
	}
}

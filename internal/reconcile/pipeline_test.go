package reconcile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/record"
	"github.com/pubsync/pubsync/internal/researchfish"
)

type outcomesFunc func(ctx context.Context, maxPages int) ([]researchfish.Outcome, error)

func (f outcomesFunc) PublicationOutcomes(ctx context.Context, maxPages int) ([]researchfish.Outcome, error) {
	return f(ctx, maxPages)
}

type resolverFunc func(ctx context.Context, d doi.DOI) (string, error)

func (f resolverFunc) Agency(ctx context.Context, d doi.DOI) (string, error) {
	return f(ctx, d)
}

type normalizerFunc func(ctx context.Context, d doi.DOI) (*record.Metadata, error)

func (f normalizerFunc) Normalize(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
	return f(ctx, d)
}

func staticOutcomes(outcomes ...researchfish.Outcome) outcomesFunc {
	return func(context.Context, int) ([]researchfish.Outcome, error) {
		return outcomes, nil
	}
}

func crossrefAgency(context.Context, doi.DOI) (string, error) {
	return "Crossref", nil
}

func stubMetadata(context.Context, doi.DOI) (*record.Metadata, error) {
	return &record.Metadata{Title: "stub", Kind: record.JournalArticle}, nil
}

func testFetchClient() *fetch.Client {
	return fetch.New(fetch.WithTimeout(2*time.Second), fetch.WithRetries(1))
}

const legacyFeed = `<publications>
	<publication>
		<id>4711</id>
		<DOI>10.1093/legacy/one</DOI>
		<ContributorIds>jdoe</ContributorIds>
	</publication>
</publications>`

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(legacyFeed))
	}))
	defer srv.Close()

	platform := staticOutcomes(
		researchfish.Outcome{ID: "1001", DOI: "10.1093/NEW/one", Title: "New work"},
		researchfish.Outcome{ID: "1002", DOI: "", Title: "No DOI reported"},
		researchfish.Outcome{ID: "1003", DOI: "10.1093/new/one", Title: "Same work again"},
	)
	p := New(platform, resolverFunc(crossrefAgency), normalizerFunc(stubMetadata), nil, testFetchClient())

	set, err := p.Run(context.Background(), Options{LegacyFeedURL: srv.URL})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The null-DOI outcome is dropped; the case variant folds into the
	// existing key.
	if set.Len() != 2 {
		t.Fatalf("set.Len() = %d, want 2", set.Len())
	}
	legacyRec := set.Get(doi.DOI("10.1093/legacy/one"))
	if legacyRec == nil || len(legacyRec.LegacyEntries) != 1 {
		t.Fatalf("legacy record = %+v", legacyRec)
	}
	newRec := set.Get(doi.DOI("10.1093/new/one"))
	if newRec == nil {
		t.Fatal("platform record missing")
	}
	if len(newRec.SourceEntries) != 2 {
		t.Errorf("len(SourceEntries) = %d, want both case variants merged", len(newRec.SourceEntries))
	}
	if newRec.DOI != "10.1093/NEW/one" {
		t.Errorf("DOI spelling = %q, want first occurrence kept", newRec.DOI)
	}
	if set.Enriched() != 2 {
		t.Errorf("Enriched() = %d, want 2", set.Enriched())
	}
}

func TestRun_MergesLegacyAndPlatformUnderOneKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(legacyFeed))
	}))
	defer srv.Close()

	platform := staticOutcomes(
		researchfish.Outcome{ID: "1001", DOI: "10.1093/Legacy/One", Title: "Reported again"},
		researchfish.Outcome{ID: "1002", DOI: "10.1093/legacy/ONE", Title: "And again"},
	)
	p := New(platform, resolverFunc(crossrefAgency), normalizerFunc(stubMetadata), nil, testFetchClient())

	set, err := p.Run(context.Background(), Options{LegacyFeedURL: srv.URL})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("set.Len() = %d, want one merged record", set.Len())
	}
	rec := set.Get(doi.DOI("10.1093/legacy/one"))
	if len(rec.LegacyEntries) != 1 || len(rec.SourceEntries) != 2 {
		t.Errorf("entries = %d legacy, %d source; want 1 and 2",
			len(rec.LegacyEntries), len(rec.SourceEntries))
	}
}

func TestEnrich_BrokenDOISkipped(t *testing.T) {
	normalized := 0
	norm := normalizerFunc(func(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
		normalized++
		return stubMetadata(ctx, d)
	})
	p := New(nil, resolverFunc(crossrefAgency), norm, nil, testFetchClient(),
		WithBrokenDOIs(map[string]string{"10.1093/Broken/doi": "registered with the wrong type"}))

	set := record.NewSet()
	set.GetOrCreate(doi.DOI("10.1093/broken/DOI"))
	set.GetOrCreate(doi.DOI("10.1093/fine/doi"))

	if err := p.Enrich(context.Background(), set); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if normalized != 1 {
		t.Errorf("normalizer ran %d times, want 1", normalized)
	}
	if set.Get(doi.DOI("10.1093/broken/doi")).Meta != nil {
		t.Error("broken DOI was enriched")
	}
	if set.Get(doi.DOI("10.1093/fine/doi")).Meta == nil {
		t.Error("healthy DOI was not enriched")
	}
}

func TestEnrich_FaultContained(t *testing.T) {
	norm := normalizerFunc(func(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
		if d == "10.1/bad" {
			return nil, context.DeadlineExceeded
		}
		return stubMetadata(ctx, d)
	})
	p := New(nil, resolverFunc(crossrefAgency), norm, nil, testFetchClient())

	set := record.NewSet()
	set.GetOrCreate(doi.DOI("10.1/bad"))
	set.GetOrCreate(doi.DOI("10.1/good"))

	if err := p.Enrich(context.Background(), set); err != nil {
		t.Fatalf("Enrich() error = %v, want faults contained", err)
	}
	if set.Get(doi.DOI("10.1/bad")).Meta != nil {
		t.Error("faulted record was enriched")
	}
	if set.Get(doi.DOI("10.1/good")).Meta == nil {
		t.Error("healthy record was not enriched")
	}
}

func TestEnrich_SkipContained(t *testing.T) {
	norm := normalizerFunc(func(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
		return nil, &record.SkipError{Reason: "duplicate deposit"}
	})
	p := New(nil, resolverFunc(crossrefAgency), norm, nil, testFetchClient())

	set := record.NewSet()
	set.GetOrCreate(doi.DOI("10.1/skipped"))

	if err := p.Enrich(context.Background(), set); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if set.Get(doi.DOI("10.1/skipped")).Meta != nil {
		t.Error("skipped record was enriched")
	}
}

func TestEnrich_ExhaustedRetriesAborts(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, d doi.DOI) (string, error) {
		return "", &fetch.ExhaustedError{URL: "https://doi.example/ra", Attempts: 3}
	})
	p := New(nil, resolver, normalizerFunc(stubMetadata), nil, testFetchClient())

	set := record.NewSet()
	set.GetOrCreate(doi.DOI("10.1/any"))

	err := p.Enrich(context.Background(), set)
	if !fetch.IsExhausted(err) {
		t.Errorf("Enrich() error = %v, want exhausted retries to abort", err)
	}
}

func TestEnrichOne_AgencyDispatch(t *testing.T) {
	crossrefCalls, dataciteCalls := 0, 0
	cr := normalizerFunc(func(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
		crossrefCalls++
		return stubMetadata(ctx, d)
	})
	dc := normalizerFunc(func(ctx context.Context, d doi.DOI) (*record.Metadata, error) {
		dataciteCalls++
		return stubMetadata(ctx, d)
	})
	agencies := map[doi.DOI]string{
		"10.1/cr": "Crossref",
		"10.1/dc": "DataCite",
		"10.1/xx": "mEDRA",
	}
	resolver := resolverFunc(func(ctx context.Context, d doi.DOI) (string, error) {
		return agencies[d], nil
	})
	p := New(nil, resolver, cr, dc, testFetchClient())
	ctx := context.Background()

	if _, err := p.enrichOne(ctx, doi.DOI("10.1/cr")); err != nil {
		t.Errorf("enrichOne(crossref) error = %v", err)
	}
	if _, err := p.enrichOne(ctx, doi.DOI("10.1/dc")); err != nil {
		t.Errorf("enrichOne(datacite) error = %v", err)
	}
	if crossrefCalls != 1 || dataciteCalls != 1 {
		t.Errorf("calls = %d crossref, %d datacite; want 1 each", crossrefCalls, dataciteCalls)
	}

	if _, err := p.enrichOne(ctx, doi.DOI("10.1/xx")); err == nil {
		t.Error("enrichOne(unknown agency) error = nil, want error")
	}
}

func TestSeedLegacy_NoURL(t *testing.T) {
	p := New(nil, nil, nil, nil, testFetchClient())
	set := record.NewSet()

	if err := p.SeedLegacy(context.Background(), set, ""); err != nil {
		t.Fatalf("SeedLegacy() error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("set.Len() = %d, want 0", set.Len())
	}
}

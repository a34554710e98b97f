package record

import (
	"testing"

	"github.com/pubsync/pubsync/internal/doi"
)

func TestSet_GetOrCreateFoldsCase(t *testing.T) {
	set := NewSet()
	a := set.GetOrCreate(doi.DOI("10.1234/ABC"))
	b := set.GetOrCreate(doi.DOI("10.1234/abc"))

	if a != b {
		t.Error("case-variant DOIs produced two records, want one")
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
	if got := a.DOI.String(); got != "10.1234/ABC" {
		t.Errorf("record kept DOI %q, want first-seen spelling %q", got, "10.1234/ABC")
	}
}

func TestSet_NonASCIICaseStaysDistinct(t *testing.T) {
	set := NewSet()
	set.GetOrCreate(doi.DOI("10.1/Ä"))
	set.GetOrCreate(doi.DOI("10.1/ä"))

	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (non-ASCII case is significant)", set.Len())
	}
}

func TestSet_AccumulatesEntries(t *testing.T) {
	set := NewSet()
	d := doi.DOI("10.1234/abc")

	set.GetOrCreate(d).LegacyEntries = append(set.GetOrCreate(d).LegacyEntries,
		LegacyEntry{OldID: "4711"})
	for _, id := range []string{"a", "b"} {
		rec := set.GetOrCreate(doi.DOI("10.1234/ABC"))
		rec.SourceEntries = append(rec.SourceEntries, SourceEntry{ID: id})
	}

	rec := set.Get(d)
	if rec == nil {
		t.Fatal("Get() = nil")
	}
	if len(rec.LegacyEntries) != 1 {
		t.Errorf("LegacyEntries length = %d, want 1", len(rec.LegacyEntries))
	}
	if len(rec.SourceEntries) != 2 {
		t.Errorf("SourceEntries length = %d, want 2", len(rec.SourceEntries))
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (same key, never two entries)", set.Len())
	}
}

func TestSet_DOIsKeepInsertionOrder(t *testing.T) {
	set := NewSet()
	for _, raw := range []string{"10.1/c", "10.1/a", "10.1/b", "10.1/A"} {
		set.GetOrCreate(doi.DOI(raw))
	}

	got := set.DOIs()
	want := []string{"10.1/c", "10.1/a", "10.1/b"}
	if len(got) != len(want) {
		t.Fatalf("DOIs() returned %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("DOIs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSet_Enriched(t *testing.T) {
	set := NewSet()
	set.GetOrCreate(doi.DOI("10.1/a"))
	set.GetOrCreate(doi.DOI("10.1/b")).Meta = &Metadata{Title: "x"}

	if got := set.Enriched(); got != 1 {
		t.Errorf("Enriched() = %d, want 1", got)
	}
}

func TestKnownKind(t *testing.T) {
	for _, kind := range []Kind{JournalArticle, BookChapter, Preprint, ProceedingsArticle} {
		if !KnownKind(kind) {
			t.Errorf("KnownKind(%q) = false, want true", kind)
		}
	}
	if KnownKind(Kind("monograph")) {
		t.Error(`KnownKind("monograph") = true, want false`)
	}
}

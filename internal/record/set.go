package record

import "github.com/pubsync/pubsync/internal/doi"

// Set is the DOI-keyed record collection. Keys fold ASCII case through
// doi.Key and keep their insertion order for serialization. Only the
// merge phase mutates a Set; enrichment fills per-record metadata after
// the set is fully built.
type Set struct {
	order []doi.DOI
	byKey map[string]*Record
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{byKey: make(map[string]*Record)}
}

// Get returns the record for d, or nil when d was never merged.
func (s *Set) Get(d doi.DOI) *Record {
	return s.byKey[d.Key()]
}

// GetOrCreate returns the record for d, creating it on first sight.
// The DOI spelling of the first occurrence wins.
func (s *Set) GetOrCreate(d doi.DOI) *Record {
	if rec, ok := s.byKey[d.Key()]; ok {
		return rec
	}
	rec := &Record{DOI: d}
	s.byKey[d.Key()] = rec
	s.order = append(s.order, d)
	return rec
}

// Len returns the number of distinct DOIs.
func (s *Set) Len() int { return len(s.byKey) }

// DOIs returns the keys in insertion order.
func (s *Set) DOIs() []doi.DOI {
	return append([]doi.DOI(nil), s.order...)
}

// Enriched counts the records carrying metadata.
func (s *Set) Enriched() int {
	n := 0
	for _, rec := range s.byKey {
		if rec.Meta != nil {
			n++
		}
	}
	return n
}

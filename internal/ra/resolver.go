// Package ra resolves which registration agency holds a DOI's metadata,
// using the doi.org directory.
package ra

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
)

// DefaultBaseURL is the doi.org root serving both the RA directory and
// the handle index.
const DefaultBaseURL = "https://doi.org"

// UnresolvableError reports that the directory could not name an agency
// for a DOI. Status carries the directory's reason, or the outcome of
// the handle check when the directory had no entry at all.
type UnresolvableError struct {
	DOI    doi.DOI
	Status string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("no registration agency for DOI %s: %s", e.DOI, e.Status)
}

// Resolver queries the doi.org RA directory and handle index.
type Resolver struct {
	fetch   *fetch.Client
	baseURL string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseURL points the resolver at a different directory root.
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = u }
}

// New returns a Resolver using fc for retrieval.
func New(fc *fetch.Client, opts ...Option) *Resolver {
	r := &Resolver{fetch: fc, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// raEntry is one element of the directory response: either an RA name
// or a status explaining its absence.
type raEntry struct {
	DOI    string `json:"DOI"`
	RA     string `json:"RA"`
	Status string `json:"status"`
}

// Agency returns the registration agency name for d, e.g. "Crossref"
// or "DataCite".
func (r *Resolver) Agency(ctx context.Context, d doi.DOI) (string, error) {
	var entries []raEntry
	err := r.fetch.GetJSON(ctx, r.baseURL+"/ra/"+url.PathEscape(d.String()), nil, nil, &entries)
	if err != nil {
		if fetch.IsNotFound(err) {
			return "", r.clarifyMissing(ctx, d)
		}
		return "", err
	}
	if len(entries) == 0 {
		return "", &UnresolvableError{DOI: d, Status: "empty directory response"}
	}
	entry := entries[0]
	if entry.RA == "" {
		return "", &UnresolvableError{DOI: d, Status: entry.Status}
	}
	return entry.RA, nil
}

// Exists checks the doi.org handle index for d.
func (r *Resolver) Exists(ctx context.Context, d doi.DOI) (bool, error) {
	_, err := r.fetch.Get(ctx, r.baseURL+"/api/handles/"+url.PathEscape(d.String()), nil, nil)
	if err != nil {
		if fetch.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// clarifyMissing distinguishes "never registered" from "registered but
// missing from the directory", so the logged reason tells the operator
// whether to fix the DOI or report the registry.
func (r *Resolver) clarifyMissing(ctx context.Context, d doi.DOI) error {
	exists, err := r.Exists(ctx, d)
	if err != nil {
		return err
	}
	if !exists {
		return &UnresolvableError{DOI: d, Status: "not a registered DOI, probably incorrect"}
	}
	return &UnresolvableError{DOI: d, Status: "registered, but the directory has no agency record"}
}

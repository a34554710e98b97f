// Package crossref retrieves and normalizes publication metadata from
// the Crossref REST API.
package crossref

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
)

// DefaultBaseURL is the Crossref REST API root.
const DefaultBaseURL = "https://api.crossref.org"

// Client queries the Crossref works endpoint.
type Client struct {
	fetch   *fetch.Client
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// NewClient returns a Client using fc for retrieval.
func NewClient(fc *fetch.Client, opts ...ClientOption) *Client {
	c := &Client{fetch: fc, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// workEnvelope is the wrapper Crossref puts around every works
// response.
type workEnvelope struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

// Work fetches the work record for d.
func (c *Client) Work(ctx context.Context, d doi.DOI) (*Work, error) {
	var envelope workEnvelope
	err := c.fetch.GetJSON(ctx, c.baseURL+"/works/"+url.PathEscape(d.String()), nil, nil, &envelope)
	if err != nil {
		return nil, err
	}
	if envelope.Status != "ok" {
		return nil, fmt.Errorf("crossref response status %q for DOI %s", envelope.Status, d)
	}
	return &envelope.Message, nil
}

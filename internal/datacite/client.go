// Package datacite retrieves and normalizes publication metadata from
// the DataCite REST API.
package datacite

import (
	"context"
	"net/url"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
)

// DefaultBaseURL is the DataCite REST API root.
const DefaultBaseURL = "https://api.datacite.org"

// Client queries the DataCite dois endpoint.
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

type envelope struct {
	Data struct {
		Attributes Attributes `json:"attributes"`
	} `json:"data"`
}

// Attributes fetches the DOI record for d.
func (c *Client) Attributes(ctx context.Context, d doi.DOI) (*Attributes, error) {
	var env envelope
	err := c.fetch.GetJSON(ctx, c.baseURL+"/dois/"+url.PathEscape(d.String()), nil, nil, &env)
	if err != nil {
		return nil, err
	}
	return &env.Data.Attributes, nil
}

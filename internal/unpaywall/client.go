// Package unpaywall looks up open-access status via the Unpaywall API.
package unpaywall

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pubsync/pubsync/internal/doi"
	"github.com/pubsync/pubsync/internal/fetch"
	"github.com/pubsync/pubsync/internal/oa"
)

// DefaultBaseURL is the Unpaywall API root.
const DefaultBaseURL = "https://api.unpaywall.org/v2"

// Client queries Unpaywall. The API requires a contact email on every
// request.
type Client struct {
	fetch   *fetch.Client
	baseURL string
	email   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New returns a Client identifying itself with email.
func New(fc *fetch.Client, email string, opts ...Option) *Client {
	c := &Client{fetch: fc, baseURL: DefaultBaseURL, email: email}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	OAStatus string `json:"oa_status"`
}

// Status returns the open-access status Unpaywall records for d.
func (c *Client) Status(ctx context.Context, d doi.DOI) (oa.Status, error) {
	params := url.Values{"email": {c.email}}
	var resp response
	if err := c.fetch.GetJSON(ctx, c.baseURL+"/"+url.PathEscape(d.String()), params, nil, &resp); err != nil {
		return "", err
	}
	status := oa.Status(resp.OAStatus)
	if !oa.Known(status) {
		return "", fmt.Errorf("unknown open-access status %q for %s", resp.OAStatus, d)
	}
	return status, nil
}

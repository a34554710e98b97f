// Package researchfish pulls reported publication outcomes from the
// ResearchFish API.
package researchfish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/pubsync/pubsync/internal/fetch"
)

// DefaultBaseURL is the ResearchFish REST API root.
const DefaultBaseURL = "https://api.researchfish.com/restapi"

// Client talks to the ResearchFish API. Authentication is a login
// call that sets a session cookie; the cookie jar is shared with the
// retried GETs that follow.
type Client struct {
	hc        *http.Client
	fetch     *fetch.Client
	baseURL   string
	fetchOpts []fetch.Option
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithFetchOptions tunes the underlying fetch client, e.g. timeout or
// retry count.
func WithFetchOptions(opts ...fetch.Option) Option {
	return func(c *Client) { c.fetchOpts = append(c.fetchOpts, opts...) }
}

// New returns a Client with a fresh session.
func New(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		hc:      &http.Client{Jar: jar},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	fetchOpts := append([]fetch.Option{fetch.WithHTTPClient(c.hc)}, c.fetchOpts...)
	c.fetch = fetch.New(fetchOpts...)
	return c, nil
}

// Login authenticates the session. The API answers with a session
// cookie that the jar carries into every later request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	loginURL := c.baseURL + "/user/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &fetch.StatusError{StatusCode: resp.StatusCode, URL: loginURL}
	}
	return nil
}

// PublicationOutcomes pulls the publications section of the outcome
// feed. maxPages caps how many pages are fetched; zero or negative
// means all of them.
func (c *Client) PublicationOutcomes(ctx context.Context, maxPages int) ([]Outcome, error) {
	params := url.Values{"section": {"publications"}}
	raws, err := c.fetch.GetPaginated(ctx, c.baseURL+"/outcome", params, maxPages)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, 0, len(raws))
	for _, raw := range raws {
		var outcome Outcome
		if err := json.Unmarshal(raw, &outcome); err != nil {
			return nil, fmt.Errorf("decoding outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

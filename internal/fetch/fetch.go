// Package fetch performs the HTTP retrieval for every upstream source,
// with bounded retries and exponential backoff.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-attempt budget before backoff is added.
	DefaultTimeout = 5 * time.Second

	// DefaultRetries is the number of attempts per request.
	DefaultRetries = 3

	// DefaultBackoff is the backoff factor. Attempt i sleeps
	// backoff * 2^i before running and gets the same amount added to
	// its timeout budget; attempt 0 has no extra delay.
	DefaultBackoff = time.Second
)

// Client issues GET requests with retries. Transport failures and
// server-side errors are retried, client errors are not. Construct
// with New.
type Client struct {
	hc        *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	retries   int
	backoff   time.Duration
	userAgent string
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to share a
// cookie jar with non-GET calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the base per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets the number of attempts per request.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithBackoff sets the backoff factor.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithUserAgent sets the User-Agent header sent when the caller does
// not provide one.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit spaces requests at most rps per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a Client with the default retry policy.
func New(opts ...Option) *Client {
	c := &Client{
		hc:      &http.Client{},
		limiter: rate.NewLimiter(rate.Inf, 0),
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request, retrying transport and server-side failures
// with exponential backoff. Client errors (4xx) fail immediately. Once
// every attempt has failed it returns an ExhaustedError, which callers
// treat as fatal for the whole run.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, header http.Header) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.log.Debug().
				Str("url", rawURL).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("backing off before retry")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		body, err := c.get(ctx, rawURL, params, header, c.attemptTimeout(attempt))
		if err == nil {
			return body, nil
		}
		if IsClientError(err) {
			return nil, err
		}
		lastErr = err
		c.log.Warn().
			Err(err).
			Str("url", rawURL).
			Int("attempt", attempt+1).
			Msg("request failed")
	}
	return nil, &ExhaustedError{URL: rawURL, Attempts: c.retries, Last: lastErr}
}

// GetJSON issues Get and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, header http.Header, v any) error {
	body, err := c.Get(ctx, rawURL, params, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", rawURL, err)
	}
	return nil
}

// backoffDelay returns the sleep before attempt i. The same duration
// is added to that attempt's timeout budget.
func (c *Client) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return c.backoff * time.Duration(1<<uint(attempt))
}

func (c *Client) attemptTimeout(attempt int) time.Duration {
	return c.timeout + c.backoffDelay(attempt)
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, header http.Header, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		query := req.URL.Query()
		for key, values := range params {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		req.URL.RawQuery = query.Encode()
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}
	return body, nil
}

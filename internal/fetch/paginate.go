package fetch

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// page is the envelope shape of the platform's paginated endpoints:
// a results array plus the start offset of the next page, absent on the
// last one.
type page struct {
	Results []json.RawMessage `json:"results"`
	Next    *int              `json:"next"`
}

// GetPaginated follows the start/next pagination protocol, returning
// every page's results concatenated in page order. maxPages caps how
// many pages are fetched; zero or negative means no cap.
func (c *Client) GetPaginated(ctx context.Context, rawURL string, params url.Values, maxPages int) ([]json.RawMessage, error) {
	merged := url.Values{}
	for key, values := range params {
		merged[key] = append([]string(nil), values...)
	}

	var results []json.RawMessage
	start := 0
	for fetched := 0; ; {
		merged.Set("start", strconv.Itoa(start))
		var p page
		if err := c.GetJSON(ctx, rawURL, merged, nil, &p); err != nil {
			return nil, err
		}
		results = append(results, p.Results...)
		fetched++
		if p.Next == nil {
			break
		}
		if maxPages > 0 && fetched >= maxPages {
			break
		}
		start = *p.Next
	}
	return results, nil
}

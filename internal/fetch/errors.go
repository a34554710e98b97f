package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx HTTP status. Statuses in [400, 500)
// mean the request itself was wrong, so they are never retried.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
}

// ExhaustedError reports that every attempt at a request failed. It
// signals the upstream service is unreachable, so callers abort the
// whole run instead of skipping a record.
type ExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("GET %s failed %d times: %v", e.URL, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// IsExhausted reports whether err means retries were exhausted.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}

// IsClientError reports whether err is a StatusError in [400, 500).
func IsClientError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) &&
		statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

package fetcher

import (
	"errors"
	"fmt"
)

// Failure categories distinguished in fetch errors.
var (
	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrConnection indicates the connection could not be established.
	ErrConnection = errors.New("connection error")
	// ErrHTTPStatus indicates a non-2xx response.
	ErrHTTPStatus = errors.New("http error")
)

// FetchError describes a failed page fetch.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error returns the error message. HTTP 403 is flagged explicitly: it almost
// always means the site blocks plain HTTP clients and the renderer fallback
// is needed.
func (e *FetchError) Error() string {
	switch {
	case e.StatusCode == httpStatusForbidden:
		return fmt.Sprintf("HTTP %d fetching %s (blocked, renderer fallback may help)", e.StatusCode, e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
	default:
		return fmt.Sprintf("error fetching %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying error category.
func (e *FetchError) Unwrap() error {
	return e.Err
}

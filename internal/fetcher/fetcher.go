// Package fetcher is the HTTP fetch layer of the ingestion job: browser-like
// request shaping, user-agent rotation, block detection, exponential backoff
// with jitter, and the one-time session warm-up that precedes all crawl
// traffic.
package fetcher

import (
	"errors"
	"fmt"
)

// ErrBlocked reports that the origin answered the warm-up request with a
// rate-limit or block status. It is the one fatal, non-retried condition in
// the system: continuing to hammer an already-blocking origin only wastes the
// time budget.
var ErrBlocked = errors.New("origin is blocking requests")

// StatusError is a fetch that ended on a non-success HTTP status after the
// retry budget was spent (or immediately, for statuses that are not worth
// retrying).
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// IsRateLimited reports whether err wraps a rate-limit/block status.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && blockStatus(se.Code)
}

func blockStatus(code int) bool {
	return code == 429 || code == 403
}

func retryableStatus(code int) bool {
	return blockStatus(code) || (code >= 500 && code < 600)
}

// transport retrieves one page. Implementations do no retrying or pacing;
// that belongs to the Client.
type transport interface {
	Name() string

	// Fetch returns the HTTP status and body. err is set only for
	// transport-level failures (timeout, connection reset, DNS); HTTP error
	// statuses come back as a status with a nil err.
	Fetch(rawURL string, navigate bool) (status int, body string, err error)

	Close() error
}

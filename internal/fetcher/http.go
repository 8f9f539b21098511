package fetcher

import (
	"time"

	"github.com/gocolly/colly/v2"
)

// httpTransport fetches pages over plain HTTP via Colly. The shared collector
// holds the transport settings; each fetch clones it for clean state.
type httpTransport struct {
	collector *colly.Collector
}

func newHTTPTransport(timeout time.Duration) *httpTransport {
	c := colly.NewCollector()
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	return &httpTransport{collector: c}
}

func (t *httpTransport) Name() string { return "http" }

func (t *httpTransport) Fetch(rawURL string, navigate bool) (int, string, error) {
	c := t.collector.Clone()

	var (
		status   int
		body     string
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range browserHeaders(r.URL, navigate) {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil && r.StatusCode != 0 {
			status = r.StatusCode
			body = string(r.Body)
		}
	})

	if err := c.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	// An HTTP error status is a result, not a transport failure.
	if status != 0 {
		return status, body, nil
	}
	return 0, "", fetchErr
}

func (t *httpTransport) Close() error { return nil }

package fetcher

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sgtmajorsays/springest/internal/config"
)

// Client is what the rest of the pipeline fetches through. It guarantees the
// session is warm, cache-busts every request, rotates request identities, and
// retries transient failures with capped exponential backoff plus jitter.
type Client struct {
	cfg     *config.RunConfig
	http    transport
	browser transport
	warm    *Warmup

	sleep func(time.Duration)
	now   func() time.Time
}

// New builds a Client for the configured store. The browser transport is only
// wired in browser and auto modes.
func New(cfg *config.RunConfig) (*Client, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	httpT := newHTTPTransport(cfg.RequestTimeout)
	c := &Client{
		cfg:   cfg,
		http:  httpT,
		sleep: time.Sleep,
		now:   time.Now,
	}
	if cfg.Fetcher != config.FetcherHTTP {
		c.browser = newBrowserTransport(cfg.RequestTimeout)
	}
	c.warm = NewWarmup(cfg.StartupDelay, cfg.StartupJitter, cfg.WarmupDelay, cfg.JitterFactor,
		func() (int, error) {
			status, _, err := httpT.Fetch(cfg.BaseURL, true)
			return status, err
		})
	return c, nil
}

// Markup fetches a page's HTML. A retry budget spent on rate-limit statuses
// in auto mode earns one rendered attempt through the browser before the
// caller sees the failure.
func (c *Client) Markup(rawURL string) (string, error) {
	if err := c.warm.Ensure(); err != nil {
		return "", err
	}

	body, err := c.fetchWithRetry(c.primary(), rawURL, true)
	if err != nil && c.cfg.Fetcher == config.FetcherAuto && c.browser != nil && IsRateLimited(err) {
		log.Warn().Str("url", rawURL).Str("transport", c.browser.Name()).Msg("rate limited, retrying once in the browser")
		status, rendered, berr := c.browser.Fetch(c.cacheBust(rawURL), true)
		if berr == nil && status >= 200 && status < 300 {
			return rendered, nil
		}
	}
	return body, err
}

// Structured fetches a JSON document. Exhausting the retry budget (or any
// non-success status) degrades to (nil, nil): structured data is an
// enrichment input with markup fallbacks, never worth failing a design over.
func (c *Client) Structured(rawURL string) (map[string]any, error) {
	if err := c.warm.Ensure(); err != nil {
		return nil, err
	}

	body, err := c.fetchWithRetry(c.http, rawURL, false)
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("structured fetch gave up")
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, nil
	}
	return out, nil
}

func (c *Client) fetchWithRetry(t transport, rawURL string, navigate bool) (string, error) {
	for attempt := 0; ; attempt++ {
		status, body, err := t.Fetch(c.cacheBust(rawURL), navigate)

		if err == nil {
			if status >= 200 && status < 300 {
				return body, nil
			}
			if !retryableStatus(status) {
				return "", &StatusError{Code: status, URL: rawURL}
			}
		}

		if attempt >= c.cfg.MaxRetries {
			if err != nil {
				return "", fmt.Errorf("fetch %s after %d retries: %w", rawURL, attempt, err)
			}
			return "", fmt.Errorf("fetch after %d retries: %w", attempt, &StatusError{Code: status, URL: rawURL})
		}

		delay := Jittered(backoffDelay(attempt, c.cfg.InitialRetryDelay, c.cfg.MaxRetryDelay), c.cfg.JitterFactor)
		evt := log.Debug().Str("url", rawURL).Str("transport", t.Name()).Int("attempt", attempt+1).Dur("delay", delay)
		if err != nil {
			evt.Err(err).Msg("network error, backing off")
		} else {
			evt.Int("status", status).Msg("transient status, backing off")
		}
		c.sleep(delay)
	}
}

// primary is the transport markup fetches start on.
func (c *Client) primary() transport {
	if c.cfg.Fetcher == config.FetcherBrowser && c.browser != nil {
		return c.browser
	}
	return c.http
}

// cacheBust forces fresh content past any intermediary cache.
func (c *Client) cacheBust(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("_cb", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// Jitter exposes the client's pacing jitter to the crawl loops.
func (c *Client) Jitter(base time.Duration) time.Duration {
	return Jittered(base, c.cfg.JitterFactor)
}

// Close releases transport resources.
func (c *Client) Close() error {
	if c.browser != nil {
		_ = c.browser.Close()
	}
	return c.http.Close()
}

package fetcher

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// browserTransport renders pages in headless Chrome via Rod. Used in browser
// and auto modes for pages that need JS hydration, or as a second try when
// plain HTTP keeps getting rate-limited. The browser launches lazily so auto
// mode costs nothing until it is actually needed.
type browserTransport struct {
	mu          sync.Mutex
	browser     *rod.Browser
	timeout     time.Duration
	stableAfter time.Duration
}

func newBrowserTransport(timeout time.Duration) *browserTransport {
	return &browserTransport{
		timeout:     timeout,
		stableAfter: 15 * time.Second,
	}
}

func (t *browserTransport) Name() string { return "browser" }

func (t *browserTransport) connect() (*rod.Browser, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.browser != nil {
		return t.browser, nil
	}

	u, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	t.browser = browser
	return browser, nil
}

func (t *browserTransport) Fetch(rawURL string, _ bool) (int, string, error) {
	browser, err := t.connect()
	if err != nil {
		return 0, "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return 0, "", err
	}
	defer page.Close()

	page = page.Timeout(t.timeout)

	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: randomUserAgent(),
	})

	if err := page.Navigate(rawURL); err != nil {
		return 0, "", err
	}
	// The page may never fully settle; the rendered HTML is still usable.
	_ = page.WaitStable(t.stableAfter)

	html, err := page.HTML()
	if err != nil {
		return 0, "", err
	}
	return http.StatusOK, html, nil
}

func (t *browserTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.browser != nil {
		return t.browser.Close()
	}
	return nil
}

// Package crawler walks storefront category pages and collects design
// stubs for later enrichment.
package crawler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/sgtmajorsays/springest/internal/config"
	"github.com/sgtmajorsays/springest/internal/extractor"
	"github.com/sgtmajorsays/springest/pkg/catalog"
)

// Fetcher is the slice of the fetch client the crawler needs.
type Fetcher interface {
	Markup(rawURL string) (string, error)
	Jitter(base time.Duration) time.Duration
}

// Crawler paginates through category listings. Slugs already present in
// the previous snapshot count toward the early-stop threshold instead of
// being collected again.
type Crawler struct {
	client Fetcher
	cfg    *config.RunConfig
	base   *url.URL
	known  map[string]bool

	sleep func(time.Duration)
}

func New(client Fetcher, cfg *config.RunConfig, known map[string]bool) (*Crawler, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if known == nil {
		known = map[string]bool{}
	}
	return &Crawler{
		client: client,
		cfg:    cfg,
		base:   base,
		known:  known,
		sleep:  time.Sleep,
	}, nil
}

// entry is a single paginated listing to walk: either the category page
// itself, its view-all variant, or one subcategory section.
type entry struct {
	title     string
	path      string // path plus query, page param stripped
	firstHTML string // already-fetched markup for firstPage, reused instead of refetching
	firstPage int
}

// Stats summarizes one category walk.
type Stats struct {
	New     int
	Known   int
	Pages   int
	Stopped bool // early stop hit before pagination was exhausted
}

// Category crawls one category key and returns the new design stubs it
// discovered, in listing order.
func (c *Crawler) Category(key string) ([]catalog.Design, Stats, error) {
	path, ok := config.CategoryPaths[key]
	if !ok {
		return nil, Stats{}, fmt.Errorf("unknown category %q", key)
	}

	entries, err := c.resolveEntries(path, key, true)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		designs []catalog.Design
		stats   Stats
		seen    = map[string]bool{}
	)
	for _, e := range entries {
		if stats.Stopped {
			break
		}
		ds := c.walk(e, key, seen, &stats)
		designs = append(designs, ds...)
	}
	return designs, stats, nil
}

// resolveEntries fetches the category landing page and decides where the
// actual product grids live: a view-all page when one is linked, the page
// itself otherwise, plus any subcategory sections (one level deep).
func (c *Crawler) resolveEntries(path, title string, descend bool) ([]entry, error) {
	landingURL := c.pageURL(path, 1)
	html, err := c.client.Markup(landingURL)
	if err != nil {
		return nil, fmt.Errorf("category landing %s: %w", path, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse category landing %s: %w", path, err)
	}

	var entries []entry

	if href, ok := extractor.ViewAllHref(doc); ok {
		viewPath, firstPage := splitPageParam(href)
		if viewPath != "" && viewPath != path {
			log.Debug().Str("category", title).Str("viewAll", viewPath).Int("firstPage", firstPage).Msg("following view-all link")
			viewHTML, err := c.client.Markup(c.pageURL(viewPath, firstPage))
			if err != nil {
				log.Warn().Err(err).Str("category", title).Msg("view-all page failed, walking landing page instead")
				entries = append(entries, entry{title: title, path: path, firstHTML: html, firstPage: 1})
			} else {
				entries = append(entries, entry{title: title, path: viewPath, firstHTML: viewHTML, firstPage: firstPage})
			}
		} else {
			entries = append(entries, entry{title: title, path: path, firstHTML: html, firstPage: firstPage})
		}
	} else {
		entries = append(entries, entry{title: title, path: path, firstHTML: html, firstPage: 1})
	}

	if descend {
		for _, sub := range extractor.Subcategories(doc) {
			subPath, _ := splitPageParam(sub.Href)
			if subPath == "" || subPath == path {
				continue
			}
			subEntries, err := c.resolveEntries(subPath, title+"/"+sub.Title, false)
			if err != nil {
				log.Warn().Err(err).Str("subcategory", sub.Title).Msg("subcategory landing failed, skipping")
				continue
			}
			entries = append(entries, subEntries...)
		}
	}
	return entries, nil
}

// walk paginates one entry until two consecutive empty pages, the
// early-stop threshold of consecutively known designs, or the page cap.
func (c *Crawler) walk(e entry, category string, seen map[string]bool, stats *Stats) []catalog.Design {
	var (
		out              []catalog.Design
		page             = e.firstPage
		consecutiveEmpty = 0
		consecutiveKnown = 0
	)
	if page < 1 {
		page = 1
	}

	for page <= config.MaxCategoryPages && consecutiveEmpty < 2 {
		var html string
		if e.firstHTML != "" && page == e.firstPage {
			html = e.firstHTML
		} else {
			var err error
			html, err = c.client.Markup(c.pageURL(e.path, page))
			if err != nil {
				log.Warn().Err(err).Str("entry", e.title).Int("page", page).Msg("page fetch failed")
				consecutiveEmpty++
				page++
				continue
			}
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			log.Warn().Err(err).Str("entry", e.title).Int("page", page).Msg("page parse failed")
			consecutiveEmpty++
			page++
			continue
		}

		stats.Pages++
		newOnPage, knownOnPage := 0, 0
		for _, stub := range extractor.Listings(doc, c.base, category, time.Now().UTC()) {
			if seen[stub.Slug] {
				continue
			}
			seen[stub.Slug] = true
			if c.known[stub.Slug] {
				knownOnPage++
				continue
			}
			out = append(out, stub)
			newOnPage++
		}

		if newOnPage+knownOnPage == 0 {
			consecutiveEmpty++
		} else {
			consecutiveEmpty = 0
			if newOnPage == 0 {
				consecutiveKnown += knownOnPage
			} else {
				consecutiveKnown = 0
			}
		}
		stats.New += newOnPage
		stats.Known += knownOnPage

		log.Info().
			Str("entry", e.title).
			Int("page", page).
			Int("new", newOnPage).
			Int("known", knownOnPage).
			Msg("category page crawled")

		if consecutiveKnown >= c.cfg.EarlyStopThreshold {
			log.Info().Str("entry", e.title).Int("consecutiveKnown", consecutiveKnown).Msg("early stop, rest of category already indexed")
			stats.Stopped = true
			break
		}

		page++
		if page <= config.MaxCategoryPages && consecutiveEmpty < 2 {
			c.sleep(c.client.Jitter(c.cfg.CategoryPageDelay))
		}
	}
	return out
}

// pageURL builds an absolute listing URL for the given path and page
// number. Page 1 carries no page parameter.
func (c *Crawler) pageURL(path string, page int) string {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	u := c.base.ResolveReference(ref)
	q := u.Query()
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	} else {
		q.Del("page")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// splitPageParam strips a page query parameter from a relative href and
// returns the remaining path+query plus the starting page it named.
func splitPageParam(href string) (string, int) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", 1
	}
	page := 1
	q := ref.Query()
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	q.Del("page")
	ref.RawQuery = q.Encode()
	path := ref.Path
	if ref.RawQuery != "" {
		path += "?" + ref.RawQuery
	}
	return path, page
}

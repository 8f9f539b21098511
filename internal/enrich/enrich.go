// Package enrich resolves crawled design stubs into full variant listings
// by fetching each design's detail page and mining its embedded data.
package enrich

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/sgtmajorsays/springest/internal/config"
	"github.com/sgtmajorsays/springest/internal/extractor"
	"github.com/sgtmajorsays/springest/internal/normalize"
	"github.com/sgtmajorsays/springest/pkg/catalog"
)

// buildIDTTL bounds how long a cached Next.js build id is trusted before
// it is re-extracted from page markup.
const buildIDTTL = 5 * time.Minute

// Fetcher is the slice of the fetch client enrichment needs.
type Fetcher interface {
	Markup(rawURL string) (string, error)
	Structured(rawURL string) (map[string]any, error)
	Jitter(base time.Duration) time.Duration
}

// Enricher fetches detail pages in small staggered batches and fills in
// variants, refined titles and checkout URLs for each design stub.
type Enricher struct {
	client Fetcher
	cfg    *config.RunConfig
	base   *url.URL
	known  map[string]bool

	mu        sync.Mutex
	buildID   string
	buildIDAt time.Time

	sleep func(time.Duration)
	now   func() time.Time
}

// Result summarizes an enrichment pass. Designs preserves input order;
// entries that could not be enriched keep their stub form with no
// variants.
type Result struct {
	Designs  []catalog.Design
	Enriched int
	Skipped  int
	Failed   int
}

func New(client Fetcher, cfg *config.RunConfig, known map[string]bool) *Enricher {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		base = &url.URL{Scheme: "https", Host: cfg.Store + ".creator-spring.com"}
	}
	if known == nil {
		known = map[string]bool{}
	}
	return &Enricher{
		client: client,
		cfg:    cfg,
		base:   base,
		known:  known,
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// EnrichAll processes stubs in batches of cfg.BatchSize. Requests within
// a batch are staggered by a jittered multiple of the request delay, and
// designs whose first attempt fails are retried once, serially, after all
// batches complete.
func (e *Enricher) EnrichAll(stubs []catalog.Design) Result {
	out := make([]catalog.Design, len(stubs))
	errs := make([]error, len(stubs))
	res := Result{}

	var retry []int
	batch := e.cfg.BatchSize
	if batch < 1 {
		batch = 1
	}

	for start := 0; start < len(stubs); start += batch {
		end := start + batch
		if end > len(stubs) {
			end = len(stubs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if e.known[stubs[i].Slug] {
				out[i] = stubs[i]
				res.Skipped++
				continue
			}
			wg.Add(1)
			go func(i, offset int) {
				defer wg.Done()
				if offset > 0 {
					e.sleep(e.client.Jitter(time.Duration(offset) * e.cfg.RequestDelay))
				}
				out[i], errs[i] = e.enrichDesign(stubs[i])
			}(i, i-start)
		}
		wg.Wait()

		for i := start; i < end; i++ {
			if errs[i] != nil {
				retry = append(retry, i)
			}
		}
		if end < len(stubs) {
			e.sleep(e.client.Jitter(e.cfg.BatchDelay))
		}
	}

	for _, i := range retry {
		log.Warn().Err(errs[i]).Str("slug", stubs[i].Slug).Msg("enrichment failed, queued retry")
		e.sleep(e.client.Jitter(2 * e.cfg.BatchDelay))
		out[i], errs[i] = e.enrichDesign(stubs[i])
		if errs[i] != nil {
			log.Error().Err(errs[i]).Str("slug", stubs[i].Slug).Msg("enrichment retry failed, keeping bare stub")
			out[i] = stubs[i]
			res.Failed++
		}
	}

	for i := range out {
		if errs[i] == nil && !e.known[stubs[i].Slug] {
			res.Enriched++
		}
	}
	res.Designs = out
	return res
}

// enrichDesign fetches one detail page and tries progressively weaker
// variant sources: the Next.js data endpoint, the flight payload embedded
// in markup, the __NEXT_DATA__ blob, then product anchors. A design that
// yields nothing gets a single placeholder variant so it still renders.
func (e *Enricher) enrichDesign(stub catalog.Design) (catalog.Design, error) {
	listingSlug, product := normalize.SplitSlug(stub.Slug)
	detail := e.detailURL(listingSlug, product)

	html, err := e.client.Markup(detail.String())
	if err != nil {
		return stub, fmt.Errorf("detail page %s: %w", stub.Slug, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stub, fmt.Errorf("parse detail page %s: %w", stub.Slug, err)
	}

	design := stub
	set := extractor.NewVariantSet(detail, e.base, stub.Title, stub.HeroImage)

	listing := e.dataEndpointListing(html, listingSlug, product)
	if listing == nil {
		if raw, ok := extractor.EmbeddedObject(doc, "storeListing"); ok {
			var obj map[string]any
			if json.Unmarshal(raw, &obj) == nil {
				listing = obj
			}
		}
	}
	if listing != nil {
		if name, ok := listing["name"].(string); ok && name != "" {
			design.Title = normalize.Title(name, stub.Slug)
		}
		for _, prod := range extractor.StoreListingProducts(listing) {
			set.AddStoreListingProduct(prod, listing)
		}
	}

	if set.Len() == 0 {
		if raw, ok := extractor.PageData(doc); ok {
			var root any
			if json.Unmarshal(raw, &root) == nil {
				for _, prod := range extractor.FindProducts(root) {
					set.AddGenericProduct(prod)
				}
			}
		}
	}
	if set.Len() == 0 {
		extractor.AnchorVariants(doc, set)
	}
	if set.Len() == 0 {
		log.Debug().Str("slug", stub.Slug).Msg("no variant source found, placeholder variant emitted")
		set.AddPlaceholder()
	}

	design.Variants = set.Variants()
	design.LastIndexed = e.now().UTC()
	log.Info().Str("slug", design.Slug).Int("variants", len(design.Variants)).Msg("design enriched")
	return design, nil
}

// dataEndpointListing asks the Next.js JSON data endpoint for the
// listing. Any failure degrades to nil so markup-based sources can take
// over.
func (e *Enricher) dataEndpointListing(html, listingSlug, product string) map[string]any {
	bid := e.cachedBuildID(html)
	if bid == "" {
		return nil
	}
	u := *e.base
	u.Path = "/_next/data/" + bid + "/listing/" + listingSlug + "/default.json"
	if product != "" {
		q := url.Values{}
		q.Set("product", product)
		u.RawQuery = q.Encode()
	}
	obj, err := e.client.Structured(u.String())
	if err != nil || obj == nil {
		return nil
	}
	if props, ok := obj["pageProps"].(map[string]any); ok {
		if listing, ok := props["storeListing"].(map[string]any); ok {
			return listing
		}
	}
	// Some endpoint revisions hang the listing off the payload root.
	if listing, ok := obj["storeListing"].(map[string]any); ok {
		return listing
	}
	return nil
}

// cachedBuildID returns the build id from markup, reusing the last one
// seen for up to buildIDTTL so every detail page does not re-pay the
// extraction.
func (e *Enricher) cachedBuildID(html string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buildID != "" && e.now().Sub(e.buildIDAt) < buildIDTTL {
		return e.buildID
	}
	bid, ok := extractor.BuildID(html)
	if !ok {
		return e.buildID
	}
	e.buildID = bid
	e.buildIDAt = e.now()
	return bid
}

func (e *Enricher) detailURL(listingSlug, product string) *url.URL {
	u := *e.base
	u.Path = extractor.ListingPathPrefix + listingSlug
	if product != "" {
		q := url.Values{}
		q.Set("product", product)
		u.RawQuery = q.Encode()
	}
	return &u
}

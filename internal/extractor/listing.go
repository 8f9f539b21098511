// Package extractor parses the storefront's markup and embedded payloads into
// design stubs and purchasable variants.
package extractor

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sgtmajorsays/springest/internal/normalize"
	"github.com/sgtmajorsays/springest/pkg/catalog"
)

// ListingPathPrefix is the path convention under which the remote site
// exposes design detail pages.
const ListingPathPrefix = "/listing/"

// Listings extracts bare design stubs from a category listing page. Every
// anchor under the listing path convention is a candidate; candidates without
// any image are discarded, and duplicate slugs keep their first occurrence.
func Listings(doc *goquery.Document, base *url.URL, category string, now time.Time) []catalog.Design {
	seen := make(map[string]bool)
	var stubs []catalog.Design

	doc.Find(`a[href^="` + ListingPathPrefix + `"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		slug := normalize.Slug(href, base)
		if slug == "" || seen[slug] {
			return
		}

		rawTitle := strings.TrimSpace(sel.Find("h2, h3, .title, .product-title, p").First().Text())
		if rawTitle == "" {
			rawTitle, _ = sel.Attr("title")
		}
		title := normalize.Title(rawTitle, slug)

		image := listingImage(sel)
		if image == "" {
			return
		}

		seen[slug] = true
		stubs = append(stubs, catalog.Design{
			Slug:        slug,
			Title:       title,
			Category:    category,
			HeroImage:   resolveURL(base, image),
			Variants:    []catalog.Variant{},
			LastIndexed: now,
		})
	})

	return stubs
}

func listingImage(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if src, ok := img.Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := img.Attr("data-src"); ok && src != "" {
		return src
	}
	if srcset, ok := sel.Find("source").First().Attr("srcset"); ok && srcset != "" {
		return firstSrcsetCandidate(srcset)
	}
	return ""
}

func firstSrcsetCandidate(srcset string) string {
	first := strings.TrimSpace(strings.SplitN(srcset, ",", 2)[0])
	return strings.SplitN(first, " ", 2)[0]
}

// resolveURL resolves a potentially relative URL against a base URL.
func resolveURL(base *url.URL, raw string) string {
	if raw == "" || base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// Package normalize holds the deterministic slug, title and category rules
// that keep a design from being duplicated or miscategorized across runs.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	slugSanitizeRe = regexp.MustCompile(`[^a-z0-9-]+`)
	typeSlugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug derives a stable slug from a listing href: the last non-empty path
// segment, lowered and sanitized to [a-z0-9-]. When the href carries a
// product selector query parameter its value is appended, so a mug and a
// shirt sharing a base design get distinct slugs.
func Slug(href string, base *url.URL) string {
	u, err := url.Parse(href)
	if err != nil {
		return slugSanitizeRe.ReplaceAllString(strings.ToLower(href), "-")
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	last := ""
	if len(parts) > 0 {
		last = parts[len(parts)-1]
	}
	slug := slugSanitizeRe.ReplaceAllString(strings.ToLower(last), "-")

	if product := u.Query().Get("product"); product != "" {
		slug += "-" + slugSanitizeRe.ReplaceAllString(strings.ToLower(product), "-")
	}
	return slug
}

// TypeSlug sanitizes a product type ("Classic Tee") into a slug suffix
// ("classic-tee") used when expanding designs into per-type entries.
func TypeSlug(productType string) string {
	return strings.Trim(typeSlugRe.ReplaceAllString(strings.ToLower(productType), "-"), "-")
}

var baseSlugRe = regexp.MustCompile(`^(.+?)-(\d+)$`)

// SplitSlug separates a slug into its base listing segment and the numeric
// product-parameter suffix appended by Slug, when one is present.
func SplitSlug(slug string) (base, product string) {
	if m := baseSlugRe.FindStringSubmatch(slug); m != nil {
		return m[1], m[2]
	}
	return slug, ""
}

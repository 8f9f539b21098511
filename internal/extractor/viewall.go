package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Subcategory is a named sub-block of a category landing page that exposes
// its own view-all control.
type Subcategory struct {
	Title string
	Href  string
}

var viewAllPhrases = []string{"view all", "show all", "see all"}

// ViewAllHref finds the page-level "view all" control, detected via link or
// button text, an aria-label, or a view-all test identifier.
func ViewAllHref(doc *goquery.Document) (string, bool) {
	href := ""
	doc.Find("a[href], button[data-href], button[data-url]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !isViewAllControl(sel) {
			return true
		}
		if h := controlHref(sel); h != "" {
			href = h
			return false
		}
		return true
	})
	return href, href != ""
}

// Subcategories scans a category landing page for sections that carry their
// own view-all control. Each becomes a separately walked listing.
func Subcategories(doc *goquery.Document) []Subcategory {
	var subs []Subcategory
	seen := make(map[string]bool)

	doc.Find(".category-section, .product-grid-container, section").Each(func(_ int, section *goquery.Selection) {
		title := strings.TrimSpace(section.Find("h2, h3, .section-title").First().Text())
		if title == "" {
			title = "Other"
		}

		href := ""
		section.Find("a, button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if !isViewAllControl(sel) {
				return true
			}
			if h := controlHref(sel); h != "" {
				href = h
				return false
			}
			return true
		})
		if href == "" || seen[href] {
			return
		}
		seen[href] = true
		subs = append(subs, Subcategory{Title: title, Href: href})
	})

	return subs
}

func isViewAllControl(sel *goquery.Selection) bool {
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		text, _ = sel.Attr("aria-label")
	}
	text = strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range viewAllPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	testID, _ := sel.Attr("data-testid")
	return strings.Contains(strings.ToLower(testID), "view-all")
}

func controlHref(sel *goquery.Selection) string {
	for _, attr := range []string{"href", "data-href", "data-url"} {
		if v, ok := sel.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

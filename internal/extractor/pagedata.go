package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var buildIDRe = regexp.MustCompile(`"buildId":"([^"]+)"`)

// BuildID pulls the framework build identifier out of a page, when the page
// exposes one. It keys the per-route JSON data endpoint.
func BuildID(html string) (string, bool) {
	if m := buildIDRe.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	return "", false
}

// PageData returns the whole-page embedded JSON blob, when present.
func PageData(doc *goquery.Document) ([]byte, bool) {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, false
	}
	return []byte(raw), true
}

// FindProducts walks an arbitrary decoded JSON tree and returns the elements
// of every array whose first entry looks like a product object (carries an
// identifier field). The traversal uses an explicit worklist instead of
// recursion; the blob's depth is not under our control.
func FindProducts(root any) []map[string]any {
	stack := []any{root}
	var products []map[string]any

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := node.(type) {
		case []any:
			if first, ok := productHead(n); ok {
				products = append(products, first)
				for _, item := range n[1:] {
					if m, ok := item.(map[string]any); ok {
						products = append(products, m)
					}
				}
				continue
			}
			for _, item := range n {
				stack = append(stack, item)
			}
		case map[string]any:
			for _, v := range n {
				stack = append(stack, v)
			}
		}
	}
	return products
}

func productHead(arr []any) (map[string]any, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return nil, false
	}
	_, hasID := first["id"]
	return first, hasID
}

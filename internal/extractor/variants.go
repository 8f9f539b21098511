package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sgtmajorsays/springest/pkg/catalog"
)

// VariantMeta carries the optional descriptive fields of a raw product.
type VariantMeta struct {
	ProductType string
	ColorName   string
	ColorHex    string
}

// VariantSet accumulates deduplicated variants for one design. Two raw
// products collapse onto one variant when they share variation id, product id
// and color; without a variation id the key degrades to product id, color and
// label.
type VariantSet struct {
	detailURL     *url.URL
	base          *url.URL
	fallbackTitle string
	fallbackImage string
	seen          map[string]bool
	variants      []catalog.Variant
}

// NewVariantSet prepares a builder for the design at detailURL.
func NewVariantSet(detailURL, base *url.URL, title, heroImage string) *VariantSet {
	return &VariantSet{
		detailURL:     detailURL,
		base:          base,
		fallbackTitle: title,
		fallbackImage: heroImage,
		seen:          make(map[string]bool),
	}
}

// Variants returns the accumulated variants in insertion order.
func (s *VariantSet) Variants() []catalog.Variant { return s.variants }

// Len reports how many variants have been accepted so far.
func (s *VariantSet) Len() int { return len(s.variants) }

// Add records one raw product as a variant unless its dedupe key was already
// seen. Empty fields degrade to the design's own title and hero image.
func (s *VariantSet) Add(productID, label, image, price, variationID string, meta VariantMeta) {
	colorKey := meta.ColorHex
	if colorKey == "" {
		colorKey = meta.ColorName
	}

	var key string
	if variationID != "" {
		key = productID + ":" + variationID + ":" + colorKey
	} else {
		key = joinNonEmpty("::", productID, colorKey, label)
	}
	if key == "" || s.seen[key] {
		return
	}
	s.seen[key] = true

	variantID := variationID
	if variantID == "" {
		variantID = productID
	}
	if variantID == "" {
		variantID = "unknown"
	}

	resolved := s.fallbackImage
	if image != "" {
		resolved = resolveURL(s.base, image)
	}

	colorHex := meta.ColorHex
	if colorHex == "" && meta.ColorName != "" {
		colorHex, _ = ColorHex(meta.ColorName)
	}

	if label == "" {
		label = s.fallbackTitle
	}

	s.variants = append(s.variants, catalog.Variant{
		ProductID:   variantID,
		Label:       label,
		Image:       resolved,
		Price:       price,
		CheckoutURL: s.checkoutURL(productID, variationID),
		ProductType: meta.ProductType,
		ColorName:   meta.ColorName,
		ColorHex:    colorHex,
	})
}

// AddPlaceholder synthesizes the single sentinel variant used when every
// extraction strategy came up empty.
func (s *VariantSet) AddPlaceholder() {
	s.Add("unknown", s.fallbackTitle, s.fallbackImage, "", "", VariantMeta{})
}

// checkoutURL is the detail URL with the product selector set to the resolved
// id, when one is known.
func (s *VariantSet) checkoutURL(productID, variationID string) string {
	id := productID
	if id == "" {
		id = variationID
	}
	if id == "" || id == "unknown" {
		return s.detailURL.String()
	}
	u := *s.detailURL
	q := u.Query()
	q.Set("product", id)
	u.RawQuery = q.Encode()
	return u.String()
}

// StoreListingProducts flattens the primary, related and more-products arrays
// of a decoded store listing object.
func StoreListingProducts(listing map[string]any) []map[string]any {
	var products []map[string]any

	switch primary := listing["primaryProduct"].(type) {
	case []any:
		products = append(products, objectsOf(primary)...)
	case map[string]any:
		products = append(products, primary)
	}

	switch more := listing["moreProducts"].(type) {
	case map[string]any:
		if items, ok := more["items"].([]any); ok {
			products = append(products, objectsOf(items)...)
		}
	case []any:
		products = append(products, objectsOf(more)...)
	}

	if related, ok := listing["products"].([]any); ok {
		products = append(products, objectsOf(related)...)
	}
	return products
}

// AddStoreListingProduct maps one raw store-listing product onto the set.
func (s *VariantSet) AddStoreListingProduct(prod map[string]any, listing map[string]any) {
	productType := strings.TrimSpace(firstString(prod, "productType", "title"))
	if productType == "" {
		productType = s.fallbackTitle
	}

	colorName := rawColorName(prod)
	colorHex := rawColorHex(prod)

	label := productType
	if colorName != "" {
		label = productType + " - " + colorName
	}

	image := productImage(prod)
	if image == "" {
		image = listingImageFallback(listing)
	}

	s.Add(
		firstScalar(prod, "productId", "id", "teespringId", "variationId"),
		label,
		image,
		productPrice(prod),
		firstScalar(prod, "variationId", "teespringId", "id"),
		VariantMeta{ProductType: productType, ColorName: colorName, ColorHex: colorHex},
	)
}

// AddGenericProduct maps one product found in the whole-page data blob.
func (s *VariantSet) AddGenericProduct(prod map[string]any) {
	label := firstString(prod, "name", "title")
	if label == "" {
		label = s.fallbackTitle
	}
	attrs, _ := prod["attributes"].(map[string]any)

	colorName := firstString(prod, "color")
	if colorName == "" && attrs != nil {
		colorName = firstString(attrs, "color")
	}
	colorHex := ""
	if attrs != nil {
		colorHex = firstString(attrs, "hex")
	}

	s.Add(
		firstScalar(prod, "id", "productId"),
		label,
		firstString(prod, "image", "mockupUrl", "imageUrl"),
		firstString(prod, "price", "priceUsd"),
		"",
		VariantMeta{
			ProductType: firstString(prod, "productType", "name", "title"),
			ColorName:   colorName,
			ColorHex:    colorHex,
		},
	)
}

// AnchorVariants collects every detail-page link that carries a product
// selector parameter, using the link text as the label. Last-resort markup
// strategy before the placeholder.
func AnchorVariants(doc *goquery.Document, set *VariantSet) {
	doc.Find(`a[href*="?product="]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		productID := u.Query().Get("product")
		if productID == "" {
			return
		}
		label := strings.TrimSpace(sel.Text())
		if label == "" {
			label = set.fallbackTitle
		}
		productType, colorName := ParseTypeColor(label)
		set.Add(productID, label, "", "", "", VariantMeta{
			ProductType: productType,
			ColorName:   colorName,
		})
	})
}

// ParseTypeColor splits a "Type - Color" label into its halves. Labels
// without the separator are all type.
func ParseTypeColor(label string) (productType, colorName string) {
	if i := strings.Index(label, " - "); i >= 0 {
		return strings.TrimSpace(label[:i]), strings.TrimSpace(label[i+3:])
	}
	return strings.TrimSpace(label), ""
}

// ---------- raw product field navigation ----------

func objectsOf(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func rawColorName(prod map[string]any) string {
	attrs, _ := prod["attributes"].(map[string]any)

	switch c := prod["color"].(type) {
	case string:
		if !strings.HasPrefix(c, "#") {
			return strings.TrimSpace(c)
		}
	case map[string]any:
		if name, ok := c["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	if attrs != nil {
		if name := firstString(attrs, "color", "displayColorName", "colour"); name != "" {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

func rawColorHex(prod map[string]any) string {
	if attrs, ok := prod["attributes"].(map[string]any); ok {
		if hex := firstString(attrs, "hex", "colorHex"); hex != "" {
			return strings.TrimSpace(hex)
		}
	}
	if hex, ok := prod["hex"].(string); ok && hex != "" {
		return strings.TrimSpace(hex)
	}
	if c, ok := prod["color"].(string); ok && strings.HasPrefix(c, "#") {
		return strings.TrimSpace(c)
	}
	return ""
}

func productPrice(prod map[string]any) string {
	if price := firstString(prod, "price", "priceUsd"); price != "" {
		return price
	}
	if sizes, ok := prod["sizes"].([]any); ok && len(sizes) > 0 {
		if size, ok := sizes[0].(map[string]any); ok {
			if price := scalarString(size["price"]); price != "" {
				return price
			}
		}
	}
	return ""
}

func productImage(prod map[string]any) string {
	images, _ := prod["images"].([]any)
	for _, key := range []string{"src", "full"} {
		for _, item := range images {
			img, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if src, ok := img[key].(string); ok && src != "" {
				return src
			}
		}
	}
	return ""
}

func listingImageFallback(listing map[string]any) string {
	if listing == nil {
		return ""
	}
	if images, ok := listing["images"].([]any); ok && len(images) > 0 {
		if img, ok := images[0].(map[string]any); ok {
			if src, ok := img["src"].(string); ok {
				return src
			}
		}
	}
	return ""
}

// firstString returns the first key whose value is a non-empty string.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// firstScalar is firstString but also accepts numeric ids, rendered without
// an exponent.
func firstScalar(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := scalarString(m[key]); v != "" {
			return v
		}
	}
	return ""
}

func scalarString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%v", n)
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

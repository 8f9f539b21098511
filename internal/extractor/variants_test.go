package extractor

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
)

func testSet(t *testing.T) *VariantSet {
	t.Helper()
	detail, err := url.Parse("https://sgt-major-says.creator-spring.com/listing/stay-frosty")
	if err != nil {
		t.Fatal(err)
	}
	return NewVariantSet(detail, testBase(t), "Stay Frosty", "/images/hero.jpg")
}

func TestVariantSetDedupe(t *testing.T) {
	set := testSet(t)
	meta := VariantMeta{ProductType: "Classic Tee", ColorName: "Black", ColorHex: "#000000"}

	set.Add("212", "Classic Tee - Black", "/images/tee.jpg", "24.99", "9001", meta)
	set.Add("212", "Classic Tee - Black", "/images/tee.jpg", "24.99", "9001", meta)
	if set.Len() != 1 {
		t.Fatalf("variants = %d, want 1 after duplicate add", set.Len())
	}

	// Same product, different color: distinct variant.
	set.Add("212", "Classic Tee - White", "", "24.99", "9002", VariantMeta{ProductType: "Classic Tee", ColorName: "White", ColorHex: "#ffffff"})
	if set.Len() != 2 {
		t.Fatalf("variants = %d, want 2", set.Len())
	}

	v := set.Variants()[0]
	if v.ProductID != "9001" {
		t.Errorf("productId = %q, want the variation id", v.ProductID)
	}
	if v.CheckoutURL != "https://sgt-major-says.creator-spring.com/listing/stay-frosty?product=212" {
		t.Errorf("checkoutUrl = %q", v.CheckoutURL)
	}
	if !strings.HasSuffix(v.Image, "/images/tee.jpg") {
		t.Errorf("image = %q", v.Image)
	}
}

func TestVariantSetDedupeWithoutVariationID(t *testing.T) {
	set := testSet(t)
	set.Add("7", "Mug - White", "", "", "", VariantMeta{ProductType: "Mug", ColorName: "White"})
	set.Add("7", "Mug - White", "", "", "", VariantMeta{ProductType: "Mug", ColorName: "White"})
	set.Add("7", "Mug - Black", "", "", "", VariantMeta{ProductType: "Mug", ColorName: "Black"})
	if set.Len() != 2 {
		t.Fatalf("variants = %d, want 2", set.Len())
	}
}

func TestVariantSetColorLookup(t *testing.T) {
	set := testSet(t)
	set.Add("7", "Mug - Heather Grey", "", "", "", VariantMeta{ProductType: "Mug", ColorName: "Heather Grey"})
	v := set.Variants()[0]
	if v.ColorHex != "#9ea4a8" {
		t.Errorf("colorHex = %q, want table lookup result", v.ColorHex)
	}
	if v.ColorName != "Heather Grey" {
		t.Errorf("colorName = %q", v.ColorName)
	}
}

func TestAddPlaceholder(t *testing.T) {
	set := testSet(t)
	set.AddPlaceholder()
	if set.Len() != 1 {
		t.Fatalf("variants = %d, want 1", set.Len())
	}
	v := set.Variants()[0]
	if v.ProductID != "unknown" {
		t.Errorf("productId = %q", v.ProductID)
	}
	if v.Label != "Stay Frosty" {
		t.Errorf("label = %q", v.Label)
	}
	// No usable product id, so checkout falls back to the bare detail URL.
	if v.CheckoutURL != "https://sgt-major-says.creator-spring.com/listing/stay-frosty" {
		t.Errorf("checkoutUrl = %q", v.CheckoutURL)
	}
}

func TestStoreListingProducts(t *testing.T) {
	raw := `{
	  "primaryProduct": [{"id": 1}],
	  "moreProducts": {"items": [{"id": 2}, {"id": 3}]},
	  "products": [{"id": 4}]
	}`
	var listing map[string]any
	if err := json.Unmarshal([]byte(raw), &listing); err != nil {
		t.Fatal(err)
	}
	products := StoreListingProducts(listing)
	if len(products) != 4 {
		t.Fatalf("products = %d, want 4", len(products))
	}
}

func TestAddStoreListingProduct(t *testing.T) {
	raw := `{
	  "teespringId": 212,
	  "productType": "Classic Tee",
	  "attributes": {"color": "Black", "hex": "#0b0b0b"},
	  "sizes": [{"label": "S", "price": "24.99"}],
	  "images": [{"src": "https://img.example/tee-black.jpg"}]
	}`
	var prod map[string]any
	if err := json.Unmarshal([]byte(raw), &prod); err != nil {
		t.Fatal(err)
	}

	set := testSet(t)
	set.AddStoreListingProduct(prod, nil)
	if set.Len() != 1 {
		t.Fatalf("variants = %d, want 1", set.Len())
	}
	v := set.Variants()[0]
	if v.ProductID != "212" {
		t.Errorf("productId = %q", v.ProductID)
	}
	if v.Label != "Classic Tee - Black" {
		t.Errorf("label = %q", v.Label)
	}
	if v.Price != "24.99" {
		t.Errorf("price = %q, want the first size's price", v.Price)
	}
	if v.ColorHex != "#0b0b0b" {
		t.Errorf("colorHex = %q", v.ColorHex)
	}
	if v.Image != "https://img.example/tee-black.jpg" {
		t.Errorf("image = %q", v.Image)
	}
	if v.ProductType != "Classic Tee" {
		t.Errorf("productType = %q", v.ProductType)
	}
}

func TestAnchorVariants(t *testing.T) {
	doc := mustDoc(t, `
<a href="/listing/stay-frosty?product=212">Classic Tee - Black</a>
<a href="/listing/stay-frosty?product=345">Mug - White</a>
<a href="/listing/stay-frosty">no product param</a>`)

	set := testSet(t)
	AnchorVariants(doc, set)
	if set.Len() != 2 {
		t.Fatalf("variants = %d, want 2", set.Len())
	}
	v := set.Variants()[0]
	if v.ProductType != "Classic Tee" || v.ColorName != "Black" {
		t.Errorf("parsed label = (%q, %q)", v.ProductType, v.ColorName)
	}
	if !strings.Contains(set.Variants()[1].CheckoutURL, "product=345") {
		t.Errorf("checkoutUrl = %q", set.Variants()[1].CheckoutURL)
	}
}

func TestParseTypeColor(t *testing.T) {
	cases := []struct {
		label     string
		wantType  string
		wantColor string
	}{
		{"Classic Tee - Black", "Classic Tee", "Black"},
		{"Mug", "Mug", ""},
		{"Premium Hoodie - Heather Grey", "Premium Hoodie", "Heather Grey"},
	}
	for _, tc := range cases {
		gotType, gotColor := ParseTypeColor(tc.label)
		if gotType != tc.wantType || gotColor != tc.wantColor {
			t.Errorf("ParseTypeColor(%q) = (%q, %q), want (%q, %q)",
				tc.label, gotType, gotColor, tc.wantType, tc.wantColor)
		}
	}
}

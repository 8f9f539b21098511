// Package catalog defines the persisted catalog snapshot produced by the
// ingestion job and consumed by the storefront. The storefront imports this
// package read-only; the job is the sole writer.
package catalog

import "time"

// Variant is one purchasable SKU of a design: a product type in a specific
// color, with its own mockup image and checkout URL.
type Variant struct {
	ProductID   string `json:"productId"`
	Label       string `json:"label"`
	Image       string `json:"image"`
	Price       string `json:"price,omitempty"`
	CheckoutURL string `json:"checkoutUrl"`
	ProductType string `json:"productType,omitempty"`
	ColorName   string `json:"colorName,omitempty"`
	ColorHex    string `json:"colorHex,omitempty"`
}

// Design is one crawled listing. Before expansion it groups every variant of
// the artwork; after expansion each entry covers a single product type and its
// slug carries a product-type suffix.
type Design struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	HeroImage   string    `json:"heroImage"`
	Variants    []Variant `json:"variants"`
	LastIndexed time.Time `json:"lastIndexed"`
}

// Snapshot is the persisted artifact, written once per successful run.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Store       string    `json:"store"`
	Designs     []Design  `json:"designs"`
}

// Designs returns the design list of the snapshot at path, or nil when no
// snapshot exists yet.
func Designs(path string) ([]Design, error) {
	snap, err := Load(path)
	if err != nil || snap == nil {
		return nil, err
	}
	return snap.Designs, nil
}

// DesignBySlug looks a single design up by its (post-expansion) slug.
func DesignBySlug(path, slug string) (*Design, error) {
	snap, err := Load(path)
	if err != nil || snap == nil {
		return nil, err
	}
	for i := range snap.Designs {
		if snap.Designs[i].Slug == slug {
			return &snap.Designs[i], nil
		}
	}
	return nil, nil
}

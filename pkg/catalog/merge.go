package catalog

import (
	"github.com/sgtmajorsays/springest/internal/normalize"
)

// Merge starts from this run's designs and appends every previous-snapshot
// design whose slug was not re-discovered, so partial crawls never erase
// known data. Preserved entries keep their prior-snapshot order, which keeps
// repeated runs over identical inputs byte-identical. Designs that still lack
// a slug or title are dropped. It returns the merged list and the number of
// preserved entries.
func Merge(run []Design, previous []Design, seen map[string]bool) (merged []Design, preserved int) {
	merged = make([]Design, 0, len(run)+len(previous))
	for _, d := range run {
		if d.Slug == "" || d.Title == "" {
			continue
		}
		merged = append(merged, d)
	}
	kept := make(map[string]bool, len(previous))
	for _, d := range previous {
		if seen[d.Slug] || kept[d.Slug] {
			continue
		}
		kept[d.Slug] = true
		merged = append(merged, d)
		preserved++
	}
	return merged, preserved
}

// Expand splits each design into one entry per distinct variant product type,
// so a single artwork sold as a tee, a hoodie and a mug renders as three
// cards. Entry slugs append a sanitized product-type suffix to the design
// slug, the hero image comes from the type's first variant, and the category
// is re-derived from the product type.
func Expand(designs []Design) []Design {
	expanded := make([]Design, 0, len(designs))
	for _, d := range designs {
		byType := make(map[string][]Variant)
		var order []string
		for _, v := range d.Variants {
			productType := v.ProductType
			if productType == "" {
				productType = "Unknown Product"
			}
			if _, ok := byType[productType]; !ok {
				order = append(order, productType)
			}
			byType[productType] = append(byType[productType], v)
		}

		for _, productType := range order {
			variants := byType[productType]
			hero := variants[0].Image
			if hero == "" {
				hero = d.HeroImage
			}
			expanded = append(expanded, Design{
				Slug:        d.Slug + "-" + normalize.TypeSlug(productType),
				Title:       d.Title + " - " + productType,
				Category:    normalize.Categorize(productType),
				HeroImage:   hero,
				Variants:    variants,
				LastIndexed: d.LastIndexed,
			})
		}
	}
	return expanded
}

package normalize

import "strings"

// Keyword sets checked in order; first hit wins, everything else is apparel.
var drinkwareKeywords = []string{"mug", "bottle", "tumbler", "cup", "flask"}

var accessoryKeywords = []string{
	"hat", "cap", "beanie", "snapback", "trucker",
	"bag", "tote", "backpack",
	"sticker", "phone case", "keychain",
}

// Categorize maps a variant product type onto the storefront's category set.
func Categorize(productType string) string {
	t := strings.ToLower(productType)
	for _, kw := range drinkwareKeywords {
		if strings.Contains(t, kw) {
			return "drinkware"
		}
	}
	for _, kw := range accessoryKeywords {
		if strings.Contains(t, kw) {
			return "accessories"
		}
	}
	return "apparel"
}

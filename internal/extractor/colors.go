package extractor

import "strings"

// Garment colors the remote catalog names without providing a hex value.
var namedColors = map[string]string{
	"black":          "#0b0b0b",
	"white":          "#ffffff",
	"navy":           "#1f2a44",
	"royal":          "#1d4e9e",
	"royal blue":     "#1d4e9e",
	"red":            "#c0242b",
	"cardinal":       "#8c1d2f",
	"maroon":         "#5e2129",
	"charcoal":       "#3c3f42",
	"charcoal grey":  "#3c3f42",
	"dark heather":   "#42454a",
	"heather grey":   "#9ea4a8",
	"heather gray":   "#9ea4a8",
	"sport grey":     "#9ea4a8",
	"athletic grey":  "#a8adb0",
	"silver":         "#c6cacc",
	"ash":            "#e3e4de",
	"sand":           "#d6c9a8",
	"tan":            "#c8a87c",
	"khaki":          "#b4a57c",
	"olive":          "#55583c",
	"military green": "#5a5f44",
	"army":           "#5a5f44",
	"forest":         "#20402b",
	"forest green":   "#20402b",
	"kelly":          "#1d7d44",
	"kelly green":    "#1d7d44",
	"irish green":    "#1d9e52",
	"gold":           "#e8a224",
	"yellow":         "#f5c518",
	"orange":         "#e8702a",
	"burnt orange":   "#b85d26",
	"brown":          "#5c4233",
	"pink":           "#e8a1b8",
	"light pink":     "#f2c4d2",
	"purple":         "#59387a",
	"teal":           "#2a8a8c",
	"turquoise":      "#35b0b8",
	"light blue":     "#a6c8e0",
	"carolina blue":  "#7ca6d8",
	"indigo":         "#3a4a8c",
	"cream":          "#f0e8d4",
	"natural":        "#ece3cd",
}

// ColorHex resolves a color name to a display hex value via the lookup table.
func ColorHex(name string) (string, bool) {
	hex, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	return hex, ok
}

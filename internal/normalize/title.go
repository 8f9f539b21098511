package normalize

import (
	"regexp"
	"strings"
)

var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "in": true, "nor": true, "of": true, "on": true,
	"or": true, "per": true, "the": true, "to": true, "vs": true, "via": true,
}

// Short tokens always rendered in caps. Mostly military shorthand, matching
// the store's naming habits.
var acronyms = map[string]bool{
	"usa": true, "us": true, "usmc": true, "usaf": true,
	"ptsd": true, "sgt": true, "nco": true,
}

var (
	leadingNoiseRe   = regexp.MustCompile(`(?i)^(buy|get|new)[-\s_]+`)
	storeTokenRe     = regexp.MustCompile(`(?i)\bsgmsays\b`)
	newTokenRe       = regexp.MustCompile(`(?i)\bnew\b`)
	trailingNumberRe = regexp.MustCompile(`-?\d+$`)
	multiHyphenRe    = regexp.MustCompile(`-{2,}`)
	multiSpaceRe     = regexp.MustCompile(`\s{2,}`)
	productTagRe     = regexp.MustCompile(`(?i)\s*[(\[]product[)\]]\s*`)
	vowelRe          = regexp.MustCompile(`(?i)[aeiou]`)
	sluggyTailRe     = regexp.MustCompile(`-\d+$`)
)

func looksSluggy(s string) bool {
	return strings.ContainsAny(s, "-_") ||
		leadingNoiseRe.MatchString(s) ||
		storeTokenRe.MatchString(s) ||
		sluggyTailRe.MatchString(s)
}

// Title turns a raw listing title (often the slug itself, or slug-derived
// noise like "buy-stay-frosty-sgmsays-7690") into a human title. Strings that
// don't look slug-derived pass through with whitespace collapsed, which makes
// the function idempotent.
func Title(raw, fallbackSlug string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = strings.TrimSpace(fallbackSlug)
	}
	if s == "" {
		return ""
	}

	if !looksSluggy(s) {
		return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
	}

	s = strings.ReplaceAll(s, "_", "-")
	s = leadingNoiseRe.ReplaceAllString(s, "")
	s = storeTokenRe.ReplaceAllString(s, "")
	s = newTokenRe.ReplaceAllString(s, "")
	s = trailingNumberRe.ReplaceAllString(s, "")
	s = multiHyphenRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		s = strings.Trim(storeTokenRe.ReplaceAllString(strings.TrimSpace(fallbackSlug), ""), "-")
	}
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "-", " ")
	s = productTagRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))

	return titleCase(s)
}

func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, word := range words {
		lower := strings.ToLower(word)
		switch {
		case acronyms[lower]:
			words[i] = strings.ToUpper(lower)
		case len(lower) <= 4 && !vowelRe.MatchString(lower):
			words[i] = strings.ToUpper(lower)
		case i != 0 && i != len(words)-1 && smallWords[lower]:
			words[i] = lower
		default:
			words[i] = capitalize(lower)
		}
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

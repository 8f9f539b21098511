package extractor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Hydration payloads arrive as escaped string arguments to a streaming push
// call, often split across several inline scripts.
var flightPushRe = regexp.MustCompile(`self\.__next_f\.push\(\[1,\s*"((?s:.*?))"\]\)`)

var flightUnescaper = strings.NewReplacer(
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\"`, `"`,
	`\\`, `\`,
)

// EmbeddedObject recovers the JSON object following `"<key>":` inside the
// page's hydration payloads. Returns the raw object bytes, or false when no
// payload carries the key with a well-formed value.
func EmbeddedObject(doc *goquery.Document, key string) ([]byte, bool) {
	var payloads []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, m := range flightPushRe.FindAllStringSubmatch(sel.Text(), -1) {
			payloads = append(payloads, flightUnescaper.Replace(m[1]))
		}
	})

	marker := `"` + key + `":`
	for _, payload := range payloads {
		idx := strings.Index(payload, marker)
		if idx < 0 {
			continue
		}
		obj, ok := matchBraces(payload[idx+len(marker):])
		if ok && json.Valid([]byte(obj)) {
			return []byte(obj), true
		}
	}
	return nil, false
}

// matchBraces captures the {...} object at the start of s (after optional
// whitespace) by explicit depth counting with an in-string flag and escape
// tracking. A JSON decoder can't be pointed at the tail directly: string
// literals inside the object may contain unbalanced braces, and the payload
// continues past the object.
func matchBraces(s string) (string, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return "", false
	}

	start := i
	depth := 0
	inStr := false
	escaped := false
	for ; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

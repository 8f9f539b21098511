package fetcher

import (
	"math/rand"
	"net/url"
)

// Realistic desktop user agents, rotated per request.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// browserHeaders builds the header set a real browser would send for a
// navigation (document) or data (fetch) request against u.
func browserHeaders(u *url.URL, navigate bool) map[string]string {
	h := map[string]string{
		"User-Agent":         randomUserAgent(),
		"Accept-Language":    "en-US,en;q=0.9",
		"Cache-Control":      "no-cache",
		"Pragma":             "no-cache",
		"Connection":         "keep-alive",
		"Sec-Ch-Ua":          `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
		"Sec-Ch-Ua-Mobile":   "?0",
		"Sec-Ch-Ua-Platform": `"Windows"`,
		"Sec-Fetch-Site":     "same-origin",
	}
	if u != nil {
		h["Referer"] = u.Scheme + "://" + u.Host + "/"
	}
	if navigate {
		h["Accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
		h["Sec-Fetch-Dest"] = "document"
		h["Sec-Fetch-Mode"] = "navigate"
		h["Sec-Fetch-User"] = "?1"
		h["Upgrade-Insecure-Requests"] = "1"
	} else {
		h["Accept"] = "application/json, text/plain, */*"
		h["Sec-Fetch-Dest"] = "empty"
		h["Sec-Fetch-Mode"] = "cors"
	}
	return h
}

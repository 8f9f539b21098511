// Package config resolves the run configuration from INGEST_* environment
// variables. Every knob has a conservative default tuned to stay under the
// origin's rate limits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FetcherMode selects the transport used for markup fetches.
type FetcherMode string

const (
	FetcherHTTP    FetcherMode = "http"
	FetcherBrowser FetcherMode = "browser"
	FetcherAuto    FetcherMode = "auto"
)

// Category names in crawl order, with their landing paths.
var CategoryOrder = []string{"all", "apparel", "accessories", "drinkware"}

var CategoryPaths = map[string]string{
	"all":         "/",
	"apparel":     "/apparel",
	"accessories": "/accessories",
	"drinkware":   "/Drinkware",
}

// MaxCategoryPages caps pagination per category against misbehaving or
// looping page counters.
const MaxCategoryPages = 200

// RunConfig holds one ingestion run's settings.
type RunConfig struct {
	Store   string
	BaseURL string
	Output  string

	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
	JitterFactor      float64

	BatchSize         int
	BatchDelay        time.Duration
	RequestDelay      time.Duration
	CategoryPageDelay time.Duration
	CategoryGapDelay  time.Duration

	WarmupDelay   time.Duration
	StartupDelay  time.Duration
	StartupJitter time.Duration

	EarlyStopThreshold int
	Categories         []string
	Fetcher            FetcherMode

	RequestTimeout time.Duration

	// Trigger mode.
	AdminPassword string
	CronSecret    string
	TriggerAddr   string
}

// FromEnv builds a RunConfig from the environment, applying defaults for
// anything unset.
func FromEnv() *RunConfig {
	store := envString("INGEST_STORE", "sgt-major-says")
	cfg := &RunConfig{
		Store:   store,
		BaseURL: envString("INGEST_BASE_URL", fmt.Sprintf("https://%s.creator-spring.com", store)),
		Output:  envString("INGEST_OUTPUT", "data/catalog.json"),

		MaxRetries:        envInt("INGEST_MAX_RETRIES", 8),
		InitialRetryDelay: envMillis("INGEST_INITIAL_RETRY_DELAY_MS", 10000),
		MaxRetryDelay:     envMillis("INGEST_MAX_RETRY_DELAY_MS", 120000),
		JitterFactor:      envFloat("INGEST_JITTER_FACTOR", 0.3),

		BatchSize:         envInt("INGEST_BATCH_SIZE", 1),
		BatchDelay:        envMillis("INGEST_BATCH_DELAY_MS", 5000),
		RequestDelay:      envMillis("INGEST_REQUEST_DELAY_MS", 3000),
		CategoryPageDelay: envMillis("INGEST_CATEGORY_PAGE_DELAY_MS", 4000),
		CategoryGapDelay:  envMillis("INGEST_CATEGORY_GAP_DELAY_MS", 5000),

		WarmupDelay:   envMillis("INGEST_WARMUP_DELAY_MS", 5000),
		StartupDelay:  envMillis("INGEST_STARTUP_DELAY_MS", 120000),
		StartupJitter: envMillis("INGEST_STARTUP_JITTER_MS", 60000),

		EarlyStopThreshold: envInt("INGEST_EARLY_STOP_THRESHOLD", 20),
		Categories:         parseCategories(os.Getenv("INGEST_CATEGORIES")),
		Fetcher:            parseFetcher(os.Getenv("INGEST_FETCHER")),

		RequestTimeout: envMillis("INGEST_REQUEST_TIMEOUT_MS", 30000),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CronSecret:    os.Getenv("CRON_SECRET"),
		TriggerAddr:   envString("TRIGGER_ADDR", ":8080"),
	}
	return cfg
}

// EnabledCategories filters CategoryOrder down to the allow-list, keeping
// crawl order stable.
func (c *RunConfig) EnabledCategories() []string {
	allowed := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		allowed[cat] = true
	}
	var enabled []string
	for _, cat := range CategoryOrder {
		if allowed[cat] {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}

func parseCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), CategoryOrder...)
	}
	var cats []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			cats = append(cats, part)
		}
	}
	return cats
}

func parseFetcher(raw string) FetcherMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "browser":
		return FetcherBrowser
	case "auto":
		return FetcherAuto
	default:
		return FetcherHTTP
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return def
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Millisecond
}

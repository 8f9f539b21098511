package crawler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sgtmajorsays/springest/internal/config"
	"github.com/sgtmajorsays/springest/pkg/catalog"
)

func TestMergeStubsCategoryUpgrade(t *testing.T) {
	index := map[string]int{}
	stubs := mergeStubs(nil, index, []catalog.Design{
		{Slug: "alpha", Category: "all"},
		{Slug: "bravo", Category: "all"},
	})
	stubs = mergeStubs(stubs, index, []catalog.Design{
		{Slug: "alpha", Category: "apparel"},
		{Slug: "charlie", Category: "apparel"},
	})

	if len(stubs) != 3 {
		t.Fatalf("stubs = %+v, want 3 deduped entries", stubs)
	}
	if stubs[0].Slug != "alpha" || stubs[1].Slug != "bravo" || stubs[2].Slug != "charlie" {
		t.Fatalf("discovery order lost: %+v", stubs)
	}
	// A catch-all discovery is refined by the specific category.
	if stubs[0].Category != "apparel" {
		t.Errorf("alpha category = %q, want apparel", stubs[0].Category)
	}
}

func TestMergeStubsKeepsSpecificCategory(t *testing.T) {
	index := map[string]int{}
	stubs := mergeStubs(nil, index, []catalog.Design{{Slug: "alpha", Category: "drinkware"}})
	stubs = mergeStubs(stubs, index, []catalog.Design{{Slug: "alpha", Category: "all"}})
	if stubs[0].Category != "drinkware" {
		t.Errorf("category = %q, a later catch-all must not downgrade it", stubs[0].Category)
	}
}

func TestRunWritesMergedSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end run in short mode")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			if r.URL.Query().Get("page") != "" {
				w.Write([]byte("<html>nothing here</html>"))
				return
			}
			w.Write([]byte(`<html><a href="/listing/alpha"><img src="/img/alpha.jpg"/><h3>Alpha</h3></a></html>`))
		case "/listing/alpha":
			w.Write([]byte(`<html><a href="/listing/alpha?product=5">Classic Tee - Black</a></html>`))
		default:
			w.Write([]byte("<html></html>"))
		}
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "catalog.json")
	previous := &catalog.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Store:       "shop",
		Designs: []catalog.Design{
			{Slug: "zulu-mug", Title: "Zulu - Mug", Category: "drinkware",
				Variants: []catalog.Variant{{ProductID: "9", ProductType: "Mug"}}},
		},
	}
	if _, err := catalog.Write(out, previous); err != nil {
		t.Fatal(err)
	}

	cfg := &config.RunConfig{
		Store:              "shop",
		BaseURL:            srv.URL,
		Output:             out,
		Categories:         []string{"all"},
		Fetcher:            config.FetcherHTTP,
		BatchSize:          1,
		EarlyStopThreshold: 20,
		RequestTimeout:     10 * time.Second,
	}
	job, err := NewJob(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer job.Close()
	job.sleep = func(time.Duration) {}

	if err := job.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap, err := catalog.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Designs) != 2 {
		t.Fatalf("snapshot = %+v, want the crawled design plus the preserved one", snap.Designs)
	}
	crawled := snap.Designs[0]
	if crawled.Slug != "alpha-classic-tee" {
		t.Errorf("crawled slug = %q", crawled.Slug)
	}
	if len(crawled.Variants) != 1 || crawled.Variants[0].ProductType != "Classic Tee" {
		t.Errorf("crawled variants = %+v", crawled.Variants)
	}
	if crawled.Category != "apparel" {
		t.Errorf("crawled category = %q", crawled.Category)
	}
	preserved := snap.Designs[1]
	if preserved.Slug != "zulu-mug" || preserved.Variants[0].ProductID != "9" {
		t.Errorf("preserved design = %+v", preserved)
	}
}

package crawler

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sgtmajorsays/springest/internal/config"
	"github.com/sgtmajorsays/springest/internal/enrich"
	"github.com/sgtmajorsays/springest/internal/fetcher"
	"github.com/sgtmajorsays/springest/internal/normalize"
	"github.com/sgtmajorsays/springest/pkg/catalog"
)

// Job drives one full ingestion run: load the previous snapshot, crawl
// every enabled category, enrich new designs, expand per product type and
// write the merged snapshot back out.
type Job struct {
	cfg    *config.RunConfig
	client *fetcher.Client
	sleep  func(time.Duration)
}

func NewJob(cfg *config.RunConfig) (*Job, error) {
	client, err := fetcher.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Job{cfg: cfg, client: client, sleep: time.Sleep}, nil
}

func (j *Job) Close() {
	j.client.Close()
}

// Run executes the pipeline once. Category failures are logged and
// skipped; only a blocked warm-up or an unwritable snapshot are fatal.
func (j *Job) Run() error {
	start := time.Now()
	categories := j.cfg.EnabledCategories()
	if len(categories) == 0 {
		log.Warn().Msg("no categories enabled, nothing to do")
		return nil
	}

	previous, err := catalog.Load(j.cfg.Output)
	if err != nil {
		log.Warn().Err(err).Str("path", j.cfg.Output).Msg("previous snapshot unreadable, starting fresh")
		previous = nil
	}
	var prevDesigns []catalog.Design
	knownBase := map[string]bool{}
	if previous != nil {
		for _, d := range previous.Designs {
			if d.Slug == "" || len(d.Variants) == 0 {
				continue
			}
			prevDesigns = append(prevDesigns, d)
			knownBase[baseSlug(d)] = true
		}
		log.Info().Int("entries", len(prevDesigns)).Str("path", j.cfg.Output).Msg("previous snapshot loaded")
	}

	crawler, err := New(j.client, j.cfg, knownBase)
	if err != nil {
		return err
	}

	var (
		stubs     []catalog.Design
		stubIndex = map[string]int{}
		failedCat = 0
		skipped   = 0
	)
	for i, key := range categories {
		log.Info().Str("category", key).Msg("crawling category")
		designs, stats, err := crawler.Category(key)
		if err != nil {
			if errors.Is(err, fetcher.ErrBlocked) {
				return err
			}
			failedCat++
			log.Error().Err(err).Str("category", key).Msg("category crawl failed, continuing with remaining categories")
			j.sleep(j.client.Jitter(2 * j.cfg.CategoryGapDelay))
			continue
		}
		skipped += stats.Known
		stubs = mergeStubs(stubs, stubIndex, designs)
		log.Info().
			Str("category", key).
			Int("new", stats.New).
			Int("known", stats.Known).
			Int("pages", stats.Pages).
			Bool("earlyStop", stats.Stopped).
			Msg("category done")
		if i < len(categories)-1 {
			j.sleep(j.client.Jitter(j.cfg.CategoryGapDelay))
		}
	}

	enricher := enrich.New(j.client, j.cfg, knownBase)
	result := enricher.EnrichAll(stubs)

	expanded := catalog.Expand(result.Designs)
	seen := map[string]bool{}
	for _, d := range expanded {
		seen[d.Slug] = true
	}
	merged, preserved := catalog.Merge(expanded, prevDesigns, seen)

	snap := &catalog.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Store:       j.cfg.Store,
		Designs:     merged,
	}
	size, err := catalog.Write(j.cfg.Output, snap)
	if err != nil {
		return err
	}

	log.Info().
		Int("entries", len(merged)).
		Int("crawled", len(result.Designs)).
		Int("expanded", len(expanded)).
		Int("skippedKnown", skipped).
		Int("enriched", result.Enriched).
		Int("enrichFailed", result.Failed).
		Int("preserved", preserved).
		Int("failedCategories", failedCat).
		Int("compressedBytes", size).
		Dur("elapsed", time.Since(start)).
		Str("path", j.cfg.Output).
		Msg("ingestion run complete")
	return nil
}

// mergeStubs folds one category's discoveries into the run's stub list,
// deduplicating by slug. A specific category wins over a catch-all
// discovery.
func mergeStubs(stubs []catalog.Design, index map[string]int, designs []catalog.Design) []catalog.Design {
	for _, d := range designs {
		if at, ok := index[d.Slug]; ok {
			if stubs[at].Category == "all" && d.Category != "all" {
				stubs[at].Category = d.Category
			}
			continue
		}
		index[d.Slug] = len(stubs)
		stubs = append(stubs, d)
	}
	return stubs
}

// baseSlug recovers the pre-expansion design slug from a snapshot entry
// by stripping the product-type suffix its slug was expanded with.
func baseSlug(d catalog.Design) string {
	if len(d.Variants) == 0 {
		return d.Slug
	}
	typeSlug := normalize.TypeSlug(d.Variants[0].ProductType)
	if typeSlug == "" {
		typeSlug = "unknown-product"
	}
	suffix := "-" + typeSlug
	if len(d.Slug) > len(suffix) {
		if d.Slug[len(d.Slug)-len(suffix):] == suffix {
			return d.Slug[:len(d.Slug)-len(suffix)]
		}
	}
	return d.Slug
}

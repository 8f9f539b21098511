package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sgtmajorsays/springest/internal/config"
	"github.com/sgtmajorsays/springest/internal/crawler"
	"github.com/sgtmajorsays/springest/internal/trigger"
)

var version = "1.0.0"

// flags holds all parsed CLI options. Anything left unset falls back to
// the INGEST_* environment.
type flags struct {
	store      string
	baseURL    string
	output     string
	categories string
	fetcher    string

	serve bool
	addr  string

	verbose bool
	pretty  bool

	showHelp    bool
	showVersion bool
}

func main() {
	f := parseFlags()

	if f.showVersion {
		fmt.Printf("springest v%s\n", version)
		os.Exit(0)
	}
	if f.showHelp {
		printUsage()
		os.Exit(0)
	}

	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	setupLogger(f.verbose, f.pretty)

	cfg := buildConfig(f)

	job, err := crawler.NewJob(cfg)
	if err != nil {
		fatal("initialization failed: %v", err)
	}
	defer job.Close()

	if f.serve {
		srv := trigger.NewServer(cfg, job.Run)
		if err := srv.ListenAndServe(); err != nil {
			fatal("trigger server failed: %v", err)
		}
		return
	}

	if err := job.Run(); err != nil {
		fatal("ingestion failed: %v", err)
	}
}

func parseFlags() *flags {
	f := &flags{}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			fatal("flag %s requires an argument", arg)
			return ""
		}

		switch arg {
		case "-s", "--store":
			f.store = next()
		case "-b", "--base-url":
			f.baseURL = next()
		case "-o", "--output":
			f.output = next()
		case "-c", "--categories":
			f.categories = next()
		case "-f", "--fetcher":
			f.fetcher = next()

		case "-serve", "--serve":
			f.serve = true
		case "-a", "--addr":
			f.addr = next()

		case "-v", "--verbose":
			f.verbose = true
		case "-p", "--pretty":
			f.pretty = true

		case "-h", "--help":
			f.showHelp = true
		case "-V", "--version":
			f.showVersion = true

		default:
			fmt.Fprintf(os.Stderr, "Unknown flag: %s (use --help for usage)\n", arg)
			os.Exit(1)
		}
	}
	return f
}

func buildConfig(f *flags) *config.RunConfig {
	cfg := config.FromEnv()
	if f.store != "" {
		cfg.Store = f.store
		if f.baseURL == "" {
			cfg.BaseURL = "https://" + f.store + ".creator-spring.com"
		}
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.categories != "" {
		var cats []string
		for _, c := range strings.Split(f.categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cats = append(cats, c)
			}
		}
		cfg.Categories = cats
	}
	switch strings.ToLower(f.fetcher) {
	case "":
	case "browser":
		cfg.Fetcher = config.FetcherBrowser
	case "auto":
		cfg.Fetcher = config.FetcherAuto
	default:
		cfg.Fetcher = config.FetcherHTTP
	}
	if f.addr != "" {
		cfg.TriggerAddr = f.addr
	}
	return cfg
}

func setupLogger(verbose, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func printUsage() {
	fmt.Print(`springest - storefront catalog ingestion

USAGE:
  springest [flags]
  springest --serve -a :8080
  springest -s sgt-major-says -o data/catalog.json.gz

TARGET:
  -s,  --store <string>       storefront slug (default "sgt-major-says")
  -b,  --base-url <string>    override the storefront base URL
  -c,  --categories <string>  comma-separated category allow-list (all, apparel, accessories, drinkware)
  -f,  --fetcher <string>     fetcher mode: http, browser, auto (default "http")

OUTPUT:
  -o,  --output <string>      snapshot path, .gz suffix implied (default "data/catalog.json")

SERVER:
       --serve                run the ingestion trigger server instead of a one-shot run
  -a,  --addr <string>        trigger server listen address (default ":8080")

LOGGING:
  -v,  --verbose              debug-level logging
  -p,  --pretty               human-readable console logging

META:
  -h,  --help                 show this help message
  -V,  --version              show version

All timing, retry and credential settings come from INGEST_*, ADMIN_PASSWORD
and CRON_SECRET environment variables, loaded from .env when present.
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/config"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/crawl"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/logging"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/match"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/output"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/prompt"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider/genius"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider/lastfm"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/provider/musicbrainz"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", os.Getenv("CL_CONFIG_PATH"), "path to config.yaml")
		outputDir   = flag.String("output", "", "directory for result files (overrides config)")
		lastfmKey   = flag.String("lastfm-key", "", "Last.fm API key (overrides config)")
		geniusToken = flag.String("genius-token", "", "Genius access token (overrides config)")
		searchOnly  = flag.Bool("search", false, "list matching artists without crawling")
		limit       = flag.Int("limit", 0, "maximum releases to crawl (0 = no limit)")
		verbose     = flag.Bool("verbose", false, "debug logging")
		quiet       = flag.Bool("quiet", false, "errors only")
		yes         = flag.Bool("yes", false, "never prompt; auto-select the top-ranked artist")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <artist name>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("crawl-lyrics %s (%s)\n", version.Version, version.Commit)
		return nil
	}
	if flag.NArg() < 1 {
		flag.Usage()
		return errors.New("artist name is required")
	}
	query := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *lastfmKey != "" {
		cfg.Providers.LastFM.APIKey = *lastfmKey
	}
	if *geniusToken != "" {
		cfg.Providers.Genius.APIKey = *geniusToken
	}
	if *limit > 0 {
		cfg.Crawl.MaxReleases = *limit
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	} else if *quiet {
		cfg.Logging.Level = "error"
	}

	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := provider.NewRateLimiterMap(cfg.RateBudgets())
	exec := provider.NewExecutor(limiter, cfg.RetryPolicy(), logger)

	registry := provider.NewRegistry(provider.NameMusicBrainz)
	registry.Register(musicbrainz.New(exec, logger))
	registry.Register(lastfm.New(exec, cfg.Providers.LastFM.APIKey, logger))
	registry.Register(genius.New(exec, cfg.Providers.Genius.APIKey, logger))

	var decision crawl.DecisionSource
	if *yes {
		decision = crawl.AutoSelect{}
	} else {
		decision = prompt.Detect()
	}

	crawler := crawl.New(registry, match.New(match.Config{Threshold: cfg.Matching.Threshold}), exec, logger, crawl.Options{
		MaxReleases:    cfg.Crawl.MaxReleases,
		Concurrency:    cfg.Crawl.Concurrency,
		ExcludedTitles: cfg.Crawl.ExcludedTitles,
		Decision:       decision,
	})

	if *searchOnly {
		return runSearch(ctx, crawler, query)
	}
	return runCrawl(ctx, crawler, output.NewWriter(cfg.Output.Dir), logger, query)
}

func runSearch(ctx context.Context, crawler *crawl.Crawler, query string) error {
	candidates, err := crawler.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}
	if len(candidates) == 0 {
		fmt.Printf("No artists found for %q\n", query)
		return nil
	}
	for _, c := range candidates {
		line := c.Name
		if c.Disambiguation != "" {
			line += " (" + c.Disambiguation + ")"
		}
		if c.Country != "" {
			line += " [" + c.Country + "]"
		}
		fmt.Printf("%3d  %s\n", c.Score, line)
	}
	return nil
}

func runCrawl(ctx context.Context, crawler *crawl.Crawler, writer *output.Writer, logger *slog.Logger, query string) error {
	agg, err := crawler.Crawl(ctx, query)
	if err != nil {
		var ambiguous *crawl.AmbiguousError
		if errors.As(err, &ambiguous) {
			fmt.Fprintf(os.Stderr, "%q is ambiguous; rerun with --search to inspect candidates\n", query)
		}
		// A cancelled crawl still saves what it gathered.
		if agg == nil || !agg.Report.Cancelled {
			return err
		}
		logger.Warn("crawl cancelled, saving partial results")
	}

	path, saveErr := writer.Save(agg)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("Crawled %s: %d releases, %d tracks, %d lyrics references\n",
		agg.Artist.Name, agg.Report.ReleasesFound, agg.Report.TracksFound, agg.Report.LyricsRefs)
	for _, o := range agg.Outcomes {
		status := string(o.Status)
		if o.Error != "" {
			status += ": " + o.Error
		}
		fmt.Printf("  %-12s %s (%d items)\n", o.Provider.DisplayName(), status, o.Items)
	}
	fmt.Printf("Saved to %s\n", path)
	return err
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/findexa/finharvest/internal/cache"
	"github.com/findexa/finharvest/internal/catalog"
	"github.com/findexa/finharvest/internal/config"
	"github.com/findexa/finharvest/internal/crawler"
	"github.com/findexa/finharvest/internal/fetch"
	"github.com/findexa/finharvest/internal/log"
	"github.com/findexa/finharvest/internal/model"
	"github.com/findexa/finharvest/internal/pipeline"
	"github.com/findexa/finharvest/internal/report"
	"github.com/findexa/finharvest/internal/robots"
	"github.com/spf13/cobra"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest documents from the configured sources",
		Long: `Harvest crawls the selected sources breadth-first from their seed URLs,
within per-source depth and page budgets, and catalogs every regulatory
document (PDF, CSV, XLSX) it discovers.

The crawl is polite: robots.txt rules and crawl delays are honored, at
most one request per host is in flight at a time, and conditional request
validators (ETag, Last-Modified) persist across runs so unchanged pages
are never re-downloaded.

Examples:
  # Harvest every built-in source
  finharvest harvest --all

  # Harvest only SEBI and AMFI
  finharvest harvest --source sebi,amfi

  # Only catalog documents published since January 2024
  finharvest harvest --all --since 2024-01-01

  # See what a run would catalog without writing anything
  finharvest harvest --all --dry-run

  # Write documents under a custom directory and emit a JSON summary
  finharvest harvest --all --out ./archive --json

Sources file (.finharvest) example:
  sources:
    - name: sebi_press
      domain: stock_equity
      org: SEBI
      seeds:
        - https://www.sebi.gov.in/media-and-notifications/press-releases/
      maxDepth: 2
      maxPages: 100
  defaults:
    maxPages: 150`,
		Args: cobra.NoArgs,
		RunE: runHarvestCmd,
	}

	// Source selection flags
	cmd.Flags().StringP("source", "s", "",
		"Comma-separated source names to harvest (see 'finharvest sources')")
	cmd.Flags().BoolP("all", "a", false,
		"Harvest every source in the registry")
	cmd.Flags().StringP("sources-file", "c", "",
		"Sources file path (default: .finharvest in current or home directory)")

	// Output flags
	cmd.Flags().StringP("out", "o", config.DefaultOutputDir,
		"Directory documents and the catalog are written under")
	cmd.Flags().String("cache", "",
		"Conditional-request cache path (default: cache.db beside the output directory)")
	cmd.Flags().String("since", "",
		"Skip documents published before this date (YYYY-MM-DD)")
	cmd.Flags().BoolP("dry-run", "n", false,
		"Crawl and decide, but write no documents and no catalog entries")

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultGlobalMaxPages,
		"Maximum pages visited across all sources (0 disables the global cap)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum delay between requests to one host (a longer robots.txt crawl-delay wins)")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Maximum fetch attempts for 429 and 5xx responses")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().String("output", "",
		"Write run summary to specified file path (creates directories if needed)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, _ []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runHarvest(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	// Get flag values
	var err error

	cfg.SourcesFilePath, err = cmd.Flags().GetString("sources-file")
	if err != nil {
		return nil, err
	}

	registry, err := loadRegistry(cfg.SourcesFilePath)
	if err != nil {
		return nil, err
	}

	// Resolve the source selection against the registry.
	// If neither --all nor --source is given, cfg.Sources stays empty and
	// Validate reports it.
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return nil, err
	}
	selection, err := cmd.Flags().GetString("source")
	if err != nil {
		return nil, err
	}
	if all {
		selection = "all"
	}
	if selection != "" {
		cfg.Sources, err = config.SelectSources(registry, selection)
		if err != nil {
			return nil, err
		}
	}

	cfg.OutputDir, err = cmd.Flags().GetString("out")
	if err != nil {
		return nil, err
	}

	cfg.CacheDBPath, err = cmd.Flags().GetString("cache")
	if err != nil {
		return nil, err
	}

	since, err := cmd.Flags().GetString("since")
	if err != nil {
		return nil, err
	}
	if since != "" {
		cutoff, err := time.Parse("2006-01-02", since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since date %q (expected YYYY-MM-DD)", since)
		}
		cfg.Since = &cutoff
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadRegistry returns the source registry: the built-in sources, with any
// sources file merged over them.
//
// If the user explicitly specified a sources file path, a missing file is an
// error. If no path was specified, a missing file just means the built-in
// registry is used as-is.
func loadRegistry(sourcesPath string) ([]config.Source, error) {
	registry, err := config.Builtins()
	if err != nil {
		return nil, fmt.Errorf("built-in source registry: %w", err)
	}

	explicit := sourcesPath != ""
	path := config.FindSourcesFile(sourcesPath)
	if path == "" {
		if explicit {
			return nil, fmt.Errorf("sources file not found: %s", sourcesPath)
		}
		return registry, nil
	}

	sf, err := config.LoadSourcesFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources file %s: %w", path, err)
	}

	merged := sf.Merged()
	for i := range merged {
		if err := merged[i].Compile(); err != nil {
			return nil, fmt.Errorf("sources file %s: %w", path, err)
		}
	}

	return mergeRegistry(registry, merged), nil
}

// mergeRegistry overlays file-defined sources onto the built-in registry.
// A file source with a built-in name replaces the built-in; new names are
// appended in file order.
func mergeRegistry(builtins, overrides []config.Source) []config.Source {
	byName := make(map[string]int, len(builtins))
	merged := make([]config.Source, len(builtins))
	copy(merged, builtins)
	for i, src := range merged {
		byName[src.Name] = i
	}

	for _, src := range overrides {
		if i, ok := byName[src.Name]; ok {
			merged[i] = src
			continue
		}
		byName[src.Name] = len(merged)
		merged = append(merged, src)
	}

	return merged
}

// setupLogger creates a redacting structured logger based on verbosity.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// runHarvest executes the harvest.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting harvest",
		"sources", config.SourceNames(cfg.Sources),
		"outputDir", cfg.OutputDir,
		"maxPages", cfg.MaxPages,
		"workers", cfg.Workers,
		"dryRun", cfg.DryRun,
	)

	// Open the conditional-request cache. A corrupt cache fails the run
	// here, before any network activity, rather than crawling with stale
	// or broken freshness state.
	store, err := cache.Open(cfg.CachePath(), cache.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open conditional-request cache: %w", err)
	}
	defer store.Close()
	logger.Info("cache opened", "path", store.Path())

	// Open the catalog and load known document ids for cross-run dedup.
	cat, err := catalog.Open(cfg.OutputDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	committer := catalog.NewCommitter(cat, catalog.NewStorage(cfg.OutputDir), catalog.Options{
		Since:  cfg.Since,
		DryRun: cfg.DryRun,
		Logger: logger,
	})

	client := fetch.NewClient(cfg.Timeout)
	gate := robots.NewGate(client, cfg.UserAgent, logger)

	fetcher := fetch.NewFetcher(client, store, fetch.NewHostLimiter(), fetch.Options{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxRetries,
		Backoff:     fetch.Backoff{Base: cfg.BackoffBase, Max: cfg.BackoffMax},
		Delay: func(host string) time.Duration {
			// The robots.txt crawl-delay wins when it asks for more
			// patience than our own configured floor.
			if d := gate.CrawlDelay(host); d > cfg.CrawlDelay {
				return d
			}
			return cfg.CrawlDelay
		},
		Logger: logger,
	})

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewMetadataStep(),
		pipeline.NewClassifyStep(),
		pipeline.NewCommitStep(committer),
	)

	sources := make([]*config.Source, 0, len(cfg.Sources))
	for i := range cfg.Sources {
		sources = append(sources, &cfg.Sources[i])
	}

	driver := crawler.New(crawler.Options{
		Sources:   sources,
		Gate:      gate,
		Fetcher:   fetcher,
		Pipeline:  p,
		MaxPages:  cfg.MaxPages,
		Workers:   cfg.Workers,
		DryRun:    cfg.DryRun,
		OutputDir: cfg.OutputDir,
		Since:     cfg.Since,
		Logger:    logger,
	})

	fmt.Printf("Harvesting %d source(s)...\n", len(cfg.Sources))
	summary, runErr := driver.Crawl(ctx)

	if runErr == nil {
		fmt.Printf("Harvest completed in %s\n\n", summary.Elapsed().Round(time.Millisecond))
	} else {
		fmt.Printf("Harvest interrupted after %s\n\n", summary.Elapsed().Round(time.Millisecond))
	}

	// The summary still covers whatever completed before an interrupt.
	if err := outputReport(cfg, summary); err != nil {
		logger.Error("report failed", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("harvest interrupted: %w", runErr)
	}
	return nil
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, summary *model.RunSummary) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (summary wrapped with the tool version)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(summary)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(summary)
		return err
	}

	// Human-readable report (default)
	var opts []report.SimpleWriterOption
	if cfg.Verbose {
		opts = append(opts, report.WithVerbose(true), report.WithShowEmpty(true))
	}
	writer := report.NewSimpleWriter(output, opts...)
	_, err := writer.Write(summary)
	return err
}

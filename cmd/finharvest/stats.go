package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/findexa/finharvest/internal/cache"
	"github.com/findexa/finharvest/internal/catalog"
	"github.com/findexa/finharvest/internal/config"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog and cache of an output directory",
		Long: `Stats reads the catalog and conditional-request cache of an output
directory and prints document counts broken down by domain, source
organization, and file type, plus the age range of the cached validators.

Nothing is crawled and nothing is written.

Examples:
  # Summarize the default ./data directory
  finharvest stats

  # Summarize a custom output directory
  finharvest stats --out ./archive`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("out", "o", config.DefaultOutputDir,
		"Output directory whose catalog and cache are summarized")
	cmd.Flags().String("cache", "",
		"Conditional-request cache path (default: cache.db beside the output directory)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.OutputDir, err = cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	cfg.CacheDBPath, err = cmd.Flags().GetString("cache")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger := setupLogger(getVerboseFlag(cmd))

	// Catalog side. A directory that was never harvested into simply has
	// no catalog; that is a state worth reporting, not an error.
	catalogPath := catalogFilePath(cfg.OutputDir)
	if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No catalog at %s (run 'finharvest harvest' first)\n", catalogPath)
	} else {
		cat, err := catalog.Open(cfg.OutputDir, logger)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		writeCatalogStats(out, catalogPath, cat.Stats())
		if err := cat.Close(); err != nil {
			return fmt.Errorf("failed to close catalog: %w", err)
		}
	}

	// Cache side. Open read-write but never create: stats must not leave
	// an empty database behind.
	cachePath := cfg.CachePath()
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		fmt.Fprintf(out, "\nNo cache at %s\n", cachePath)
		return nil
	}

	store, err := cache.Open(cachePath, cache.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("failed to open conditional-request cache: %w", err)
	}
	defer store.Close()

	cacheStats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}
	writeCacheStats(out, cachePath, cacheStats)

	return nil
}

// catalogFilePath returns the catalog location inside an output directory.
func catalogFilePath(dir string) string {
	return filepath.Join(dir, "catalog.jsonl")
}

// writeCatalogStats prints the catalog breakdowns with stable ordering.
func writeCatalogStats(out io.Writer, path string, stats catalog.Stats) {
	fmt.Fprintf(out, "CATALOG  %s\n", path)
	fmt.Fprintf(out, "  documents: %d\n", stats.TotalDocuments)
	writeBreakdown(out, "BY DOMAIN", stats.ByDomain)
	writeBreakdown(out, "BY SOURCE", stats.BySource)
	writeBreakdown(out, "BY FILE TYPE", stats.ByFileType)
}

// writeBreakdown prints one count table sorted by key.
func writeBreakdown(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	width := 0
	for key := range counts {
		keys = append(keys, key)
		if len(key) > width {
			width = len(key)
		}
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "\n  %s\n", title)
	for _, key := range keys {
		fmt.Fprintf(out, "    %-*s %6d\n", width, key, counts[key])
	}
}

// writeCacheStats prints the validator store summary.
func writeCacheStats(out io.Writer, path string, stats *cache.Stats) {
	fmt.Fprintf(out, "\nCACHE  %s\n", path)
	fmt.Fprintf(out, "  entries: %d\n", stats.Entries)
	if stats.Entries > 0 {
		fmt.Fprintf(out, "  oldest:  %s\n", stats.Oldest.Format(time.DateTime))
		fmt.Fprintf(out, "  newest:  %s\n", stats.Newest.Format(time.DateTime))
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSourcesCmd creates the sources command.
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the configured harvest sources",
		Long: `Sources lists every source the harvester knows about: the built-in
registry of Indian financial authorities, with any sources file merged
over it.

Use the listed names with 'finharvest harvest --source'.

Examples:
  # List the built-in sources
  finharvest sources

  # Include seed URLs and filter patterns
  finharvest sources --verbose

  # List sources from a specific sources file
  finharvest sources -c mysources.yaml`,
		Args: cobra.NoArgs,
		RunE: runSourcesCmd,
	}

	cmd.Flags().StringP("sources-file", "c", "",
		"Sources file path (default: .finharvest in current or home directory)")

	return cmd
}

// runSourcesCmd executes the sources command.
func runSourcesCmd(cmd *cobra.Command, _ []string) error {
	sourcesPath, err := cmd.Flags().GetString("sources-file")
	if err != nil {
		return err
	}

	registry, err := loadRegistry(sourcesPath)
	if err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-14s %-8s %-18s %5s %6s  %s\n",
		"NAME", "ORG", "DOMAIN", "DEPTH", "PAGES", "SEEDS")
	for _, src := range registry {
		fmt.Fprintf(out, "%-14s %-8s %-18s %5d %6d  %d\n",
			src.Name, src.Org, src.Domain, src.MaxDepth, src.MaxPages, len(src.Seeds))
	}

	if !verbose {
		fmt.Fprintf(out, "\n%d source(s). Use --verbose for seeds and filter patterns.\n", len(registry))
		return nil
	}

	for _, src := range registry {
		fmt.Fprintf(out, "\n%s (%s, %s)\n", src.Name, src.Org, src.Domain)
		for _, seed := range src.Seeds {
			fmt.Fprintf(out, "  seed  %s\n", seed)
		}
		for _, pattern := range src.Allow {
			fmt.Fprintf(out, "  allow %s\n", pattern)
		}
		for _, pattern := range src.Deny {
			fmt.Fprintf(out, "  deny  %s\n", pattern)
		}
		if len(src.FileTypes) > 0 {
			fmt.Fprintf(out, "  types %s\n", strings.Join(src.FileTypes, ", "))
		}
	}

	return nil
}

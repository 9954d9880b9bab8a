// Package main provides the entry point for the finharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for finharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finharvest",
		Short: "Harvester for Indian financial regulatory documents",
		Long: `finharvest collects investor-education and regulatory documents published
by Indian financial authorities (SEBI, NSE, AMFI, RBI, CBDT).

It crawls each configured source breadth-first within depth and page
budgets, honors robots.txt rules and crawl delays, re-uses conditional
request validators across runs so unchanged pages are never re-downloaded,
and catalogs every harvested document exactly once.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewSourcesCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

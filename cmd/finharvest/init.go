package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/findexa/finharvest/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sources.yaml
var sourcesTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a finharvest sources file",
		Long: `Init creates a commented sources.yaml file in the finharvest config
directory, where every harvest run picks it up automatically.

The generated file includes:
- A commented example source with every available field
- The list of valid domain tags
- Defaults that apply to all sources in the file

Examples:
  # Create sources.yaml in the config directory
  finharvest init

  # Create a project-local sources file instead
  finharvest init -o .finharvest

  # Force overwrite existing file
  finharvest init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", defaultInitPath(),
		"Output file path for the sources file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing sources file")

	return cmd
}

// defaultInitPath is where harvest runs look for the template by default.
// See config.FindSourcesFile for the full search order.
func defaultInitPath() string {
	return filepath.Join(config.XDGConfigDir(), config.XDGSourcesFile)
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("sources file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := sourcesTemplate.ReadFile("templates/sources.yaml")
	if err != nil {
		return fmt.Errorf("failed to read sources template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write sources file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write sources file: %w", err)
	}

	fmt.Printf("Created sources file: %s\n", outputPath)
	fmt.Println("\nEdit this file to define or override harvest sources:")
	fmt.Println("  - Seed URLs and the domain tag for each source")
	fmt.Println("  - Allow/deny URL patterns")
	fmt.Println("  - Depth and page budgets")

	return nil
}

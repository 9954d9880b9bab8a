package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/findexa/finharvest/internal/config"
	"gopkg.in/yaml.v3"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != defaultInitPath() {
			t.Errorf("expected default %q, got %q", defaultInitPath(), flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Run("creates sources file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sources.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected sources file to be created")
		}

		// Verify file contents
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		// Check for expected YAML keys
		if !strings.Contains(string(content), "sources:") {
			t.Error("expected file to contain 'sources:'")
		}
		if !strings.Contains(string(content), "defaults:") {
			t.Error("expected file to contain 'defaults:'")
		}
	})

	t.Run("fails if file exists without force", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sources.yaml")

		// Create existing file
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err == nil {
			t.Error("expected error when file exists")
		}
		if !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected 'already exists' error, got %v", err)
		}
	})

	t.Run("overwrites file with force flag", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sources.yaml")

		// Create existing file
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath, "-f"})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file was overwritten
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if string(content) == "existing" {
			t.Error("expected file to be overwritten")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "sources.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected sources file to be created in nested directory")
		}
	})

	t.Run("file has correct permissions", func(t *testing.T) {
		// Skip on Windows as it doesn't support Unix-style file permissions
		if runtime.GOOS == "windows" {
			t.Skip("skipping permission test on Windows")
		}

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sources.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}

		// Check file permissions (0600)
		perm := info.Mode().Perm()
		if perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}

// TestSourcesTemplate tests the embedded sources template.
func TestSourcesTemplate(t *testing.T) {
	t.Parallel()

	content, err := sourcesTemplate.ReadFile("templates/sources.yaml")
	if err != nil {
		t.Fatalf("failed to read template: %v", err)
	}

	t.Run("template is not empty", func(t *testing.T) {
		t.Parallel()
		if len(content) == 0 {
			t.Error("expected non-empty template")
		}
	})

	t.Run("template parses as a sources file", func(t *testing.T) {
		t.Parallel()

		var sf config.SourcesFile
		if err := yaml.Unmarshal(content, &sf); err != nil {
			t.Fatalf("template is not valid YAML: %v", err)
		}

		// The template ships as a no-op overlay: no active sources, only
		// commented examples and file-wide defaults.
		if len(sf.Sources) != 0 {
			t.Errorf("expected no active sources in the template, got %d", len(sf.Sources))
		}
		if sf.Defaults.MaxPages == 0 {
			t.Error("expected template defaults to set maxPages")
		}
	})

	t.Run("template contains documentation comments", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(string(content), "#") {
			t.Error("expected template to contain documentation comments")
		}
	})

	t.Run("template documents the domain tags", func(t *testing.T) {
		t.Parallel()
		for _, domain := range []string{"stock_equity", "mutual_fund_etf", "gold", "taxation"} {
			if !strings.Contains(string(content), domain) {
				t.Errorf("expected template to mention domain %q", domain)
			}
		}
	})
}

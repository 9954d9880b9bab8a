package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSourcesFile is the dotfile name searched in the working and home
// directories.
const DefaultSourcesFile = ".finharvest"

// XDGSourcesFile is the sources file name under the XDG config directory.
// The init command writes its template here.
const XDGSourcesFile = "sources.yaml"

// ErrSourcesNotFound is returned when the sources file does not exist.
var ErrSourcesNotFound = errors.New("sources file not found")

// LoadSourcesFile loads source definitions from a YAML file.
// If the file does not exist, it returns ErrSourcesNotFound.
// Callers should handle this error appropriately based on whether
// the file path was explicitly specified by the user.
func LoadSourcesFile(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided sources path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourcesNotFound
		}
		return nil, err
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	return &sf, nil
}

// FindSourcesFile searches for a sources file in the following order:
// 1. If sourcesPath is specified, use it directly
// 2. Look for .finharvest in the current directory
// 3. Look for sources.yaml in the XDG config directory
// 4. Look for .finharvest in the user's home directory
//
// Returns the path to the sources file if found, or empty string if not found.
func FindSourcesFile(sourcesPath string) string {
	// If explicit path is provided, use it
	if sourcesPath != "" {
		if _, err := os.Stat(sourcesPath); err == nil {
			return sourcesPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdSources := filepath.Join(cwd, DefaultSourcesFile)
		if _, err := os.Stat(cwdSources); err == nil {
			return cwdSources
		}
	}

	// Check XDG config directory (where init writes its template)
	xdgSources := filepath.Join(XDGConfigDir(), XDGSourcesFile)
	if _, err := os.Stat(xdgSources); err == nil {
		return xdgSources
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeSources := filepath.Join(home, DefaultSourcesFile)
		if _, err := os.Stat(homeSources); err == nil {
			return homeSources
		}
	}

	return ""
}

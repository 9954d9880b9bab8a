package catalog

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/findexa/finharvest/internal/extract"
	"github.com/findexa/finharvest/internal/model"
)

const maxStorageTitleLen = 30

// Storage writes document payloads under the output directory, laid
// out as <domain>/<org>/<year>/<type>__<short-title>__<date>.<ext>.
// Undated documents land in an "undated" year directory, so their
// paths stay stable across runs in later years.
type Storage struct {
	root string
}

// NewStorage returns a Storage rooted at dir.
func NewStorage(dir string) *Storage {
	return &Storage{root: dir}
}

// Root returns the output directory.
func (s *Storage) Root() string {
	return s.root
}

// StoragePath derives the slash-separated path for a record, relative
// to the output directory.
func StoragePath(record *model.DocumentRecord) string {
	org := safeName(record.SourceOrg)

	year := "undated"
	dateStr := "undated"
	if record.PublishedAt != nil {
		year = strconv.Itoa(record.PublishedAt.Year())
		dateStr = record.PublishedAt.Format("2006-01-02")
	}

	short := extract.ShortTitleFromURL(record.SourceURL)
	if len(short) > maxStorageTitleLen {
		short = short[:maxStorageTitleLen]
	}

	ext := string(record.FileType)
	filename := fmt.Sprintf("%s__%s__%s.%s", ext, short, dateStr, ext)

	return path.Join(string(record.Domain), org, year, filename)
}

// Write stores content at the relative path, creating parent
// directories as needed. A file already present with the same size is
// left untouched and Write reports false; re-running a harvest then
// re-catalogs documents without rewriting their payloads.
func (s *Storage) Write(relPath string, content []byte) (bool, error) {
	full := filepath.Join(s.root, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return false, fmt.Errorf("failed to create document directory: %w", err)
	}

	if info, err := os.Stat(full); err == nil && info.Size() == int64(len(content)) {
		return false, nil
	}

	if err := os.WriteFile(full, content, 0600); err != nil {
		return false, fmt.Errorf("failed to write document: %w", err)
	}

	return true, nil
}

// asciiFold decomposes accented characters and strips the combining
// marks, so names from YAML-defined sources stay filesystem-safe.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func safeName(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}

	folded = strings.ToLower(folded)

	var sb strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			sb.WriteRune(r)
		case r == ' ', r == '_':
			sb.WriteRune('_')
		}
	}

	if sb.Len() == 0 {
		return "unknown"
	}
	return sb.String()
}

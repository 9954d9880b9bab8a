package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/findexa/finharvest/internal/model"
)

const catalogFileName = "catalog.jsonl"

// Catalog is the append-only document log at <output>/catalog.jsonl,
// one JSON record per line. Opening a catalog loads every identifier
// already on disk, so duplicate detection spans the lifetime of the
// output directory, not just the current run.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	file     *os.File
	ids      map[string]struct{}
	total    int
	bySource map[string]int
	byDomain map[string]int
	byType   map[string]int
}

// Open loads the catalog in dir, creating the directory and an empty
// catalog file when absent. Malformed lines are skipped with a warning
// so one damaged entry cannot take the whole catalog down.
func Open(dir string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	c := &Catalog{
		path:     filepath.Join(dir, catalogFileName),
		logger:   logger,
		ids:      make(map[string]struct{}),
		bySource: make(map[string]int),
		byDomain: make(map[string]int),
		byType:   make(map[string]int),
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog for append: %w", err)
	}
	c.file = file

	return c, nil
}

func (c *Catalog) load() error {
	file, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only handle

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record model.DocumentRecord
		if err := json.Unmarshal(line, &record); err != nil || record.ID == "" {
			c.logger.Warn("skipping malformed catalog line",
				slog.String("path", c.path),
				slog.Int("line", lineNo))
			continue
		}

		c.remember(&record)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	return nil
}

// Path returns the location of the catalog file.
func (c *Catalog) Path() string {
	return c.path
}

// Contains reports whether a document identifier is already cataloged.
func (c *Catalog) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.ids[id]
	return ok
}

// Remember reserves a document identifier without writing anything.
// It returns false when the identifier is already known, so concurrent
// committers cannot both claim the same document.
func (c *Catalog) Remember(record *model.DocumentRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[record.ID]; ok {
		return false
	}

	c.remember(record)
	return true
}

// remember must be called with c.mu held (or before the catalog is shared).
func (c *Catalog) remember(record *model.DocumentRecord) {
	c.ids[record.ID] = struct{}{}
	c.total++
	c.bySource[record.SourceOrg]++
	c.byDomain[string(record.Domain)]++
	c.byType[string(record.FileType)]++
}

// Append writes the record as one line to the catalog file. The
// identifier must have been reserved with Remember first.
func (c *Catalog) Append(record *model.DocumentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode catalog record: %w", err)
	}
	data = append(data, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return fmt.Errorf("catalog is closed")
	}
	if _, err := c.file.Write(data); err != nil {
		return fmt.Errorf("failed to append catalog record: %w", err)
	}

	return nil
}

// Stats summarizes the catalog contents.
type Stats struct {
	TotalDocuments int
	BySource       map[string]int
	ByDomain       map[string]int
	ByFileType     map[string]int
}

// Stats returns document counts, total and broken down by source
// organization, domain tag, and file type.
func (c *Catalog) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalDocuments: c.total,
		BySource:       make(map[string]int, len(c.bySource)),
		ByDomain:       make(map[string]int, len(c.byDomain)),
		ByFileType:     make(map[string]int, len(c.byType)),
	}
	for org, n := range c.bySource {
		stats.BySource[org] = n
	}
	for domain, n := range c.byDomain {
		stats.ByDomain[domain] = n
	}
	for ft, n := range c.byType {
		stats.ByFileType[ft] = n
	}

	return stats
}

// Close syncs and closes the catalog file.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}

	// Push appended records to disk before letting go of the handle.
	syncErr := c.file.Sync()
	err := c.file.Close()
	c.file = nil
	if err == nil {
		err = syncErr
	}
	return err
}

package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestCache creates a temporary cache for testing.
func setupTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(dbPath, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	cleanup := func() {
		_ = c.Close()
	}

	return c, cleanup
}

// TestOpen tests cache opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		dbPath := filepath.Join(tmpDir, "newdir", "subdir", "cache.db")
		c, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open cache: %v", err)
		}
		defer c.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("cache file was not created")
		}
		if c.Path() != dbPath {
			t.Errorf("expected path %q, got %q", dbPath, c.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when cache does not exist", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "missing.db")

		opts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}

		_, err := Open(dbPath, opts)
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and cache does not exist")
		}

		expectedMsg := "cache database not found"
		if !strings.Contains(err.Error(), expectedMsg) {
			t.Errorf("expected error to contain %q, got %q", expectedMsg, err.Error())
		}
	})

	t.Run("CreateIfNotExists=false opens existing cache", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "existing.db")
		ctx := context.Background()

		// First create the cache and store an entry
		c1, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create cache: %v", err)
		}

		entry := &Entry{
			URL:          "https://www.sebi.gov.in/legal/circulars/doc.pdf",
			ETag:         `"abc123"`,
			ContentHash:  "deadbeef",
			LastModified: "Wed, 01 Jan 2025 00:00:00 GMT",
		}
		if err := c1.Store(ctx, entry); err != nil {
			t.Fatalf("failed to store entry: %v", err)
		}
		c1.Close()

		// Now open with CreateIfNotExists=false
		openOpts := Options{
			CreateIfNotExists: false,
			EnableWAL:         true,
		}
		c2, err := Open(dbPath, openOpts)
		if err != nil {
			t.Fatalf("failed to open existing cache: %v", err)
		}
		defer c2.Close()

		// Verify data persists
		retrieved, err := c2.Lookup(ctx, entry.URL)
		if err != nil {
			t.Fatalf("failed to look up entry: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected entry to persist across reopen")
		}
		if retrieved.ETag != entry.ETag {
			t.Errorf("expected etag %q, got %q", entry.ETag, retrieved.ETag)
		}
	})

	t.Run("corrupt file returns ErrCorrupt", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "corrupt.db")

		// Write something that is definitely not a SQLite database.
		garbage := []byte("this is not a sqlite database, just text that overwrites the header entirely")
		if err := os.WriteFile(dbPath, garbage, 0600); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		_, err := Open(dbPath, DefaultOptions())
		if err == nil {
			t.Fatal("expected error for corrupt database")
		}
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt, got %v", err)
		}
		if !strings.Contains(err.Error(), dbPath) {
			t.Errorf("expected error to name the file, got %q", err.Error())
		}
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

// TestLookupAndStore tests entry operations.
func TestLookupAndStore(t *testing.T) {
	t.Parallel()

	c, cleanup := setupTestCache(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("store and retrieve entry", func(t *testing.T) {
		entry := &Entry{
			URL:          "https://www.amfiindia.com/investor-corner/guide.pdf",
			ETag:         `"v1-tag"`,
			LastModified: "Mon, 03 Mar 2025 10:00:00 GMT",
			ContentHash:  "0123456789abcdef",
		}

		if err := c.Store(ctx, entry); err != nil {
			t.Fatalf("failed to store entry: %v", err)
		}

		retrieved, err := c.Lookup(ctx, entry.URL)
		if err != nil {
			t.Fatalf("failed to look up entry: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected entry, got nil")
		}

		if retrieved.ETag != `"v1-tag"` {
			t.Errorf("expected etag %q, got %q", `"v1-tag"`, retrieved.ETag)
		}
		if retrieved.LastModified != entry.LastModified {
			t.Errorf("expected last modified %q, got %q", entry.LastModified, retrieved.LastModified)
		}
		if retrieved.ContentHash != entry.ContentHash {
			t.Errorf("expected hash %q, got %q", entry.ContentHash, retrieved.ContentHash)
		}
		if retrieved.FetchedAt.IsZero() {
			t.Error("expected non-zero fetch time")
		}
	})

	t.Run("upsert replaces validators", func(t *testing.T) {
		entry := &Entry{
			URL:         "https://www.sebi.gov.in/circulars.html",
			ETag:        `"old"`,
			ContentHash: "aaaa",
		}

		if err := c.Store(ctx, entry); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		entry.ETag = `"new"`
		entry.ContentHash = "bbbb"

		if err := c.Store(ctx, entry); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		retrieved, err := c.Lookup(ctx, entry.URL)
		if err != nil {
			t.Fatalf("failed to look up: %v", err)
		}
		if retrieved.ETag != `"new"` {
			t.Errorf("expected updated etag, got %q", retrieved.ETag)
		}
		if retrieved.ContentHash != "bbbb" {
			t.Errorf("expected updated hash, got %q", retrieved.ContentHash)
		}
	})

	t.Run("returns nil for unknown URL", func(t *testing.T) {
		retrieved, err := c.Lookup(ctx, "https://example.invalid/never-fetched")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if retrieved != nil {
			t.Error("expected nil for unknown URL")
		}
	})
}

// TestTouch tests refreshing an entry's fetch time.
func TestTouch(t *testing.T) {
	t.Parallel()

	c, cleanup := setupTestCache(t)
	defer cleanup()

	ctx := context.Background()

	entry := &Entry{
		URL:          "https://incometaxindia.gov.in/Pages/communications/circulars.aspx",
		ETag:         `"stable"`,
		LastModified: "Tue, 04 Feb 2025 09:00:00 GMT",
		ContentHash:  "cafe",
	}
	if err := c.Store(ctx, entry); err != nil {
		t.Fatalf("failed to store: %v", err)
	}

	if err := c.Touch(ctx, entry.URL); err != nil {
		t.Fatalf("failed to touch: %v", err)
	}

	retrieved, err := c.Lookup(ctx, entry.URL)
	if err != nil {
		t.Fatalf("failed to look up: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected entry, got nil")
	}
	if retrieved.ETag != `"stable"` {
		t.Errorf("touch must not change validators, got etag %q", retrieved.ETag)
	}
	if retrieved.ContentHash != "cafe" {
		t.Errorf("touch must not change hash, got %q", retrieved.ContentHash)
	}
	if retrieved.FetchedAt.IsZero() {
		t.Error("expected non-zero fetch time after touch")
	}
}

// TestStats tests cache statistics.
func TestStats(t *testing.T) {
	t.Parallel()

	c, cleanup := setupTestCache(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("empty cache yields zero values", func(t *testing.T) {
		stats, err := c.Stats(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Entries != 0 {
			t.Errorf("expected 0 entries, got %d", stats.Entries)
		}
		if !stats.Newest.IsZero() {
			t.Errorf("expected zero newest time, got %v", stats.Newest)
		}
	})

	t.Run("counts stored entries", func(t *testing.T) {
		urls := []string{
			"https://www.sebi.gov.in/a.pdf",
			"https://www.sebi.gov.in/b.pdf",
		}
		for _, u := range urls {
			if err := c.Store(ctx, &Entry{URL: u, ContentHash: "x"}); err != nil {
				t.Fatalf("failed to store %s: %v", u, err)
			}
		}

		stats, err := c.Stats(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Entries != 2 {
			t.Errorf("expected 2 entries, got %d", stats.Entries)
		}
		if stats.Newest.IsZero() {
			t.Error("expected non-zero newest time")
		}
	})
}

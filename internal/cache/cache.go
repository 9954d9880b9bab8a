package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrCorrupt indicates the cache database exists but failed its integrity
// check. The harvester refuses to run against a damaged cache instead of
// silently rebuilding it, because a rebuilt cache would re-download every
// document on the next run.
var ErrCorrupt = errors.New("cache database is corrupt")

// Cache provides SQLite-based storage for HTTP revalidation state.
// For every URL the harvester has fetched it remembers the validators the
// server handed back (ETag, Last-Modified) and the content hash, so later
// runs can issue conditional requests and skip unchanged pages.
//
// Design decision: We keep one cache file across all runs rather than one
// per run. Conditional requests only pay off when validators survive
// between runs, and a single file keeps the resume story trivial.
type Cache struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Cache behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the cache database at the specified path.
// If CreateIfNotExists is true, the parent directory and database file are
// created as needed. If CreateIfNotExists is false and the database doesn't
// exist, an error is returned.
//
// A database that exists but fails SQLite's integrity check yields an error
// wrapping ErrCorrupt; the caller is expected to abort rather than crawl
// with a broken cache.
func Open(dbPath string, opts Options) (*Cache, error) {
	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		// Ensure parent directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &Cache{
		db:     db,
		dbPath: dbPath,
	}

	// Verify the file is an intact SQLite database before trusting it.
	// A truncated or overwritten file surfaces here rather than as a
	// confusing failure mid-crawl.
	if err := c.checkIntegrity(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache tables: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the path of the underlying database file.
func (c *Cache) Path() string {
	return c.dbPath
}

// checkIntegrity runs SQLite's quick_check against the database.
// Any failure is reported as ErrCorrupt with the path, so the operator
// knows which file to remove to start fresh.
func (c *Cache) checkIntegrity() error {
	var result string
	err := c.db.QueryRowContext(context.Background(), "PRAGMA quick_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("%w: %s (%v)", ErrCorrupt, c.dbPath, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: %s (%s)", ErrCorrupt, c.dbPath, result)
	}
	return nil
}

// createTables creates the database schema if it doesn't exist.
func (c *Cache) createTables() error {
	schema := `
	-- Entries store HTTP revalidation state per URL.
	-- Entries are never evicted; the cache is the crawl's memory.
	CREATE TABLE IF NOT EXISTS entries (
		url TEXT PRIMARY KEY,
		etag TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL DEFAULT '',
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entries_fetched_at ON entries(fetched_at);
	`

	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// Entry represents the stored revalidation state for one URL.
type Entry struct {
	// URL is the fetched URL after canonicalization.
	URL string

	// ETag is the entity tag returned by the server, if any.
	ETag string

	// LastModified is the Last-Modified header value, if any.
	LastModified string

	// ContentHash is the SHA-256 hex digest of the last fetched body.
	ContentHash string

	// FetchedAt is when the URL was last fetched with a 200 response.
	FetchedAt time.Time
}

// Lookup retrieves the cache entry for a URL.
// Returns (nil, nil) when the URL has never been fetched. Lookup never
// touches the network; it only answers from local state.
func (c *Cache) Lookup(ctx context.Context, url string) (*Entry, error) {
	query := `
	SELECT url, etag, last_modified, content_hash, fetched_at
	FROM entries
	WHERE url = ?
	`

	var entry Entry
	var fetchedAt string

	err := c.db.QueryRowContext(ctx, query, url).Scan(
		&entry.URL,
		&entry.ETag,
		&entry.LastModified,
		&entry.ContentHash,
		&fetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up cache entry: %w", err)
	}

	// Parse timestamp (SQLite may return different formats depending on version/configuration)
	entry.FetchedAt = parseTimestamp(fetchedAt)

	return &entry, nil
}

// Store inserts or updates the cache entry for a URL.
// Uses UPSERT so a refetch of a known URL replaces its validators, and
// always stamps fetched_at with the current time.
func (c *Cache) Store(ctx context.Context, entry *Entry) error {
	query := `
	INSERT INTO entries (url, etag, last_modified, content_hash)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		etag = excluded.etag,
		last_modified = excluded.last_modified,
		content_hash = excluded.content_hash,
		fetched_at = CURRENT_TIMESTAMP
	`

	_, err := c.db.ExecContext(ctx, query,
		entry.URL,
		entry.ETag,
		entry.LastModified,
		entry.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Touch refreshes fetched_at for a URL without changing its validators.
// Used when a conditional request comes back 304 Not Modified: the stored
// state is still valid, only the check time moves forward.
func (c *Cache) Touch(ctx context.Context, url string) error {
	query := `
	UPDATE entries SET fetched_at = CURRENT_TIMESTAMP WHERE url = ?
	`

	_, err := c.db.ExecContext(ctx, query, url)
	if err != nil {
		return fmt.Errorf("failed to touch cache entry: %w", err)
	}

	return nil
}

// Stats summarizes the cache contents for status display.
type Stats struct {
	// Entries is the total number of cached URLs.
	Entries int64

	// Oldest is the fetch time of the stalest entry.
	Oldest time.Time

	// Newest is the fetch time of the freshest entry.
	Newest time.Time
}

// Stats returns summary statistics over all cache entries.
// An empty cache yields zero values rather than an error.
func (c *Cache) Stats(ctx context.Context) (*Stats, error) {
	query := `
	SELECT COUNT(*), MIN(fetched_at), MAX(fetched_at) FROM entries
	`

	var stats Stats
	var oldest, newest sql.NullString

	err := c.db.QueryRowContext(ctx, query).Scan(&stats.Entries, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}

	if oldest.Valid {
		stats.Oldest = parseTimestamp(oldest.String)
	}
	if newest.Valid {
		stats.Newest = parseTimestamp(newest.String)
	}

	return &stats, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}

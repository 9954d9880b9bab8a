package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for polite crawling of Indian government and
// financial-sector portals, which rate-limit aggressively and serve large
// document archives.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "finharvest"

	// DefaultTimeout is set to 30 seconds. The regulator portals are slow
	// to first byte on archive pages but rarely slower than that; a longer
	// timeout just delays failure classification.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth of 2 reaches listing pages and the documents they
	// link to. The built-in seeds point directly at section indexes, so
	// deeper crawling mostly finds navigation chrome.
	DefaultMaxDepth = 2

	// DefaultMaxPages is the per-source page budget when a source does not
	// declare its own. This bounds a run against endlessly paginated
	// circular archives.
	DefaultMaxPages = 200

	// DefaultGlobalMaxPages caps pages across all sources in one run.
	// Zero disables the global cap; per-source budgets still apply.
	DefaultGlobalMaxPages = 400

	// DefaultWorkers is the number of concurrent fetch workers. Politeness
	// is per host, so workers above the host count add nothing; four covers
	// the built-in sources with headroom for custom registries.
	DefaultWorkers = 4

	// DefaultCrawlDelay is the minimum spacing between requests to the
	// same host when robots.txt declares no crawl-delay. 1 second is
	// conservative and respectful of server resources.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies finharvest in HTTP requests and in
	// robots.txt group matching. A descriptive User-Agent lets portal
	// operators identify harvester traffic in their logs.
	DefaultUserAgent = "finharvest/1.0 (+https://github.com/findexa/finharvest)"

	// DefaultMaxRetries caps fetch attempts for retryable failures
	// (429, 5xx, connection errors). After the cap the failure surfaces
	// in the run summary instead of retrying forever.
	DefaultMaxRetries = 5

	// DefaultBackoffBase is the first retry delay. Doubles each attempt.
	DefaultBackoffBase = 1 * time.Second

	// DefaultBackoffMax caps the retry delay growth. One minute keeps a
	// struggling host from stalling a worker for the whole run.
	DefaultBackoffMax = 60 * time.Second

	// DefaultOutputDir is where documents and the catalog are written.
	DefaultOutputDir = "./data"
)

// Config holds all configuration options for a harvest run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, CatalogConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Sources is the resolved list of sources to harvest this run.
	// Populated from --source/--all against the registry, after merging
	// any sources file overrides.
	Sources []Source

	// OutputDir is the directory documents and the catalog are written
	// under. Created if missing.
	OutputDir string

	// CacheDBPath is the path of the SQLite conditional-request cache.
	// The cache persists across runs so unchanged resources are never
	// re-downloaded. Empty means cache.db beside the output directory;
	// see CachePath.
	CacheDBPath string

	// Since excludes documents published before this date from the
	// catalog. Documents without a derivable publication date are still
	// cataloged. Nil means no cutoff.
	Since *time.Time

	// MaxPages caps the total pages visited across all sources in one
	// run. Zero means no global cap; per-source budgets still apply.
	MaxPages int

	// Workers is the number of concurrent fetch workers.
	Workers int

	// Timeout is the per-request timeout covering connection establishment
	// through body read. It does not bound the whole run.
	Timeout time.Duration

	// CrawlDelay is the minimum spacing between requests to one host when
	// robots.txt declares no crawl-delay of its own. A robots crawl-delay
	// always wins when longer.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests and
	// matched against robots.txt groups.
	UserAgent string

	// MaxRetries caps fetch attempts for retryable failures.
	MaxRetries int

	// BackoffBase is the initial retry delay, doubled each attempt.
	BackoffBase time.Duration

	// BackoffMax caps the exponential retry delay.
	BackoffMax time.Duration

	// DryRun performs the full crawl and commit decision-making but skips
	// the physical file writes and catalog appends, logging what would
	// have happened.
	DryRun bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON run-summary output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown run-summary output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run summary.
	// When set, the summary is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// SourcesFilePath is the path to a sources file overriding or
	// extending the built-in registry. If empty, the tool searches the
	// standard locations. See FindSourcesFile.
	SourcesFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, retry cap).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:   DefaultOutputDir,
		MaxPages:    DefaultGlobalMaxPages,
		Workers:     DefaultWorkers,
		Timeout:     DefaultTimeout,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
		BackoffMax:  DefaultBackoffMax,
	}
}

// XDGConfigDir returns the XDG config directory for finharvest.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/finharvest
// On macOS: ~/Library/Application Support/finharvest
// On Windows: %APPDATA%\finharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// CachePath returns the conditional-request cache location: CacheDBPath
// when set, otherwise cache.db beside the output directory. Colocating the
// default keeps the cache next to the catalog it makes resumable, so moving
// or deleting a data directory moves or resets its crawl state with it.
func (c *Config) CachePath() string {
	if c.CacheDBPath != "" {
		return c.CacheDBPath
	}
	return filepath.Join(c.OutputDir, "cache.db")
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one source to harvest
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	// The catalog and stored documents need somewhere to live
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Workers must be positive; zero would mean no fetching
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxPages must be non-negative; zero disables the global cap
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// The retry cap is what guarantees fetch termination
	if c.MaxRetries <= 0 {
		return ErrInvalidRetries
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Source.Compile() and
// provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each validation site. This allows callers
// to use errors.Is() for programmatic error handling while still providing
// human-readable messages. Errors that need dynamic context (a source name,
// a bad pattern) are wrapped with fmt.Errorf("%w: ...") at the call site.
var (
	// ErrNoSources is returned when no source is selected for a run.
	// This occurs when neither --source nor --all provides a source.
	ErrNoSources = errors.New("no sources selected: use --source or --all")

	// ErrUnknownSource is returned when a requested source name is not in
	// the registry. The offending name is attached by the caller.
	ErrUnknownSource = errors.New("unknown source")

	// ErrNoOutputDir is returned when the output directory is empty.
	// The catalog and all stored documents live under this directory.
	ErrNoOutputDir = errors.New("output directory must not be empty")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no fetching at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 to rely on robots.txt crawl-delay only.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the global page budget is negative.
	// Zero means no global cap beyond the per-source budgets.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidRetries is returned when the retry attempt cap is not positive.
	// The cap is what guarantees the fetcher terminates against a host that
	// keeps returning server errors.
	ErrInvalidRetries = errors.New("invalid retry cap: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrSourceName is returned when a source has no name.
	ErrSourceName = errors.New("source must have a name")

	// ErrSourceSeeds is returned when a source defines no seed URLs.
	// A source without seeds can never enqueue work.
	ErrSourceSeeds = errors.New("source must define at least one seed URL")

	// ErrSourcePattern is returned when a source allow or deny pattern does
	// not compile as a regular expression.
	ErrSourcePattern = errors.New("source pattern does not compile")
)

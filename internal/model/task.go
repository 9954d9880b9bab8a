package model

// Task is one unit of crawl work: a URL queued at a given link depth for a
// named source. Tasks are value objects; the frontier copies them freely.
type Task struct {
	// URL is the canonical URL to fetch.
	URL string `json:"url"`

	// Depth is the link distance from the source's seed set.
	// Seeds enter the frontier at depth 0.
	Depth int `json:"depth"`

	// Source is the name of the source that queued this task.
	Source string `json:"source"`
}

// Outcome classifies the terminal state of one crawl task.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and counter indexing. The String() method
// provides human-readable output when needed.
type Outcome int

const (
	// OutcomeFetched indicates a fresh payload was downloaded.
	OutcomeFetched Outcome = iota

	// OutcomeCached indicates the server confirmed the cached copy is
	// still current, so no body was transferred.
	OutcomeCached

	// OutcomeBlocked indicates robots.txt disallowed the URL.
	// Blocked tasks still consume source budget.
	OutcomeBlocked

	// OutcomeFailed indicates the fetch hit a non-retryable error or
	// exhausted its retry attempts.
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeCached:
		return "cached"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

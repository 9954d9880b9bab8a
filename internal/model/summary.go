package model

import (
	"sort"
	"time"
)

// SourceStats aggregates per-source counters for one harvest run.
type SourceStats struct {
	// Visited counts tasks that consumed source budget, whatever their
	// outcome.
	Visited int `json:"visited"`

	// Fetched counts fresh downloads.
	Fetched int `json:"fetched"`

	// Cached counts not-modified confirmations.
	Cached int `json:"cached"`

	// Blocked counts robots.txt refusals.
	Blocked int `json:"blocked"`

	// Failed counts terminal fetch failures.
	Failed int `json:"failed"`

	// Documents counts catalog records written for this source.
	Documents int `json:"documents"`

	// Duplicates counts commits skipped because the document identifier
	// was already cataloged, in this run or a prior one.
	Duplicates int `json:"duplicates"`
}

// Add accumulates other into s.
func (s *SourceStats) Add(other SourceStats) {
	s.Visited += other.Visited
	s.Fetched += other.Fetched
	s.Cached += other.Cached
	s.Blocked += other.Blocked
	s.Failed += other.Failed
	s.Documents += other.Documents
	s.Duplicates += other.Duplicates
}

// RunSummary aggregates the counters of one harvest run across sources.
// The crawl driver fills it in; the report writers render it.
type RunSummary struct {
	// StartedAt and FinishedAt bound the run in wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// DryRun is true when no files or catalog records were written.
	DryRun bool `json:"dry_run"`

	// OutputDir is the output directory the run committed into.
	OutputDir string `json:"output_dir"`

	// Since is the publication-date cutoff applied to commits, if any.
	Since *time.Time `json:"since,omitempty"`

	// Sources maps source name to its counters.
	Sources map[string]SourceStats `json:"sources"`
}

// Elapsed returns the wall-clock duration of the run.
func (r *RunSummary) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Totals sums the counters across all sources.
func (r *RunSummary) Totals() SourceStats {
	var total SourceStats
	for _, stats := range r.Sources {
		total.Add(stats)
	}
	return total
}

// SourceNames returns the source names in sorted order for stable output.
func (r *RunSummary) SourceNames() []string {
	names := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

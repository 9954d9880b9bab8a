package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/findexa/finharvest/internal/model"
)

// timeRounding keeps elapsed times readable in terminal output.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with aligned per-source
// counters and clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sources with no activity are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show sources with no activity.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the run summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeSources(&sb, summary)
	w.writeDocuments(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        FINHARVEST REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run Date:   %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", summary.Elapsed().Round(timeRounding)))
	sb.WriteString(fmt.Sprintf("Output:     %s\n", summary.OutputDir))

	if summary.Since != nil {
		sb.WriteString(fmt.Sprintf("Since:      %s\n", summary.Since.Format("2006-01-02")))
	}
	if summary.DryRun {
		sb.WriteString("Mode:       DRY RUN (nothing written)\n")
	} else {
		sb.WriteString("Mode:       Harvest\n")
	}

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05.000 MST")))
		sb.WriteString(fmt.Sprintf("Finished:   %s\n", summary.FinishedAt.Format("2006-01-02 15:04:05.000 MST")))
	}

	sb.WriteString("\n")
}

// writeSources writes the per-source counter table.
func (w *SimpleWriter) writeSources(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SOURCES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  %-14s %8s %8s %7s %8s %7s %6s %5s\n",
		"SOURCE", "VISITED", "FETCHED", "CACHED", "BLOCKED", "FAILED", "DOCS", "DUPS"))

	shown := 0
	for _, name := range summary.SourceNames() {
		stats := summary.Sources[name]
		if stats.Visited == 0 && !w.showEmpty {
			continue
		}
		shown++
		sb.WriteString(fmt.Sprintf("  %-14s %8d %8d %7d %8d %7d %6d %5d\n",
			name, stats.Visited, stats.Fetched, stats.Cached,
			stats.Blocked, stats.Failed, stats.Documents, stats.Duplicates))
	}
	if shown == 0 {
		sb.WriteString("  (no source saw any activity)\n")
	}

	total := summary.Totals()
	sb.WriteString(fmt.Sprintf("  %-14s %8d %8d %7d %8d %7d %6d %5d\n",
		"TOTAL", total.Visited, total.Fetched, total.Cached,
		total.Blocked, total.Failed, total.Documents, total.Duplicates))
	sb.WriteString("\n")
}

// writeDocuments writes the catalog outcome section.
func (w *SimpleWriter) writeDocuments(sb *strings.Builder, summary *model.RunSummary) {
	total := summary.Totals()

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DOCUMENTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if summary.DryRun {
		sb.WriteString(fmt.Sprintf("  Would catalog:   %d\n", total.Documents))
	} else {
		sb.WriteString(fmt.Sprintf("  Cataloged:       %d\n", total.Documents))
	}
	sb.WriteString(fmt.Sprintf("  Duplicates:      %d\n", total.Duplicates))
	sb.WriteString(fmt.Sprintf("  Failed pages:    %d\n", total.Failed))
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by finharvest\n")
	sb.WriteString("https://github.com/findexa/finharvest\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

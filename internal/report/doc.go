// Package report renders harvest run summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: The summary data lives in the model package and the
// rendering lives here, so a new output format never touches the types
// the crawler fills in during a run.
//
// Writers implement the Writer interface and can be composed with
// MultiWriter to send one run summary to several destinations at once.
package report

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/findexa/finharvest/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSources(md, summary)
	w.writeOutcomes(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("Harvest Report")
	md.PlainText("")

	rows := [][]string{
		{"Run Date", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Elapsed", summary.Elapsed().Round(timeRounding).String()},
		{"Output", "`" + summary.OutputDir + "`"},
		{"Mode", w.getModeText(summary)},
	}
	if summary.Since != nil {
		rows = append(rows, []string{"Since", summary.Since.Format("2006-01-02")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getModeText returns the mode text based on the run state.
func (w *MarkdownWriter) getModeText(summary *model.RunSummary) string {
	if summary.DryRun {
		return "🔍 Dry Run (nothing written)"
	}
	return "✅ Harvest"
}

// writeSources writes the per-source counter table.
func (w *MarkdownWriter) writeSources(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Sources")
	md.PlainText("")

	headers := []string{"Source", "Visited", "Fetched", "Cached", "Blocked", "Failed", "Documents", "Duplicates"}

	var rows [][]string
	for _, name := range summary.SourceNames() {
		stats := summary.Sources[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(stats.Visited),
			strconv.Itoa(stats.Fetched),
			strconv.Itoa(stats.Cached),
			strconv.Itoa(stats.Blocked),
			strconv.Itoa(stats.Failed),
			strconv.Itoa(stats.Documents),
			strconv.Itoa(stats.Duplicates),
		})
	}

	total := summary.Totals()
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.Itoa(total.Visited) + "**",
		"**" + strconv.Itoa(total.Fetched) + "**",
		"**" + strconv.Itoa(total.Cached) + "**",
		"**" + strconv.Itoa(total.Blocked) + "**",
		"**" + strconv.Itoa(total.Failed) + "**",
		"**" + strconv.Itoa(total.Documents) + "**",
		"**" + strconv.Itoa(total.Duplicates) + "**",
	})

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	if total.Visited > 0 {
		w.writePieChart(md, total)
	}

	w.writeAlert(md, summary, total)
}

// writePieChart writes a mermaid pie chart of the page outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, total model.SourceStats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if total.Fetched > 0 {
		chart.LabelAndIntValue("Fetched", uint64(total.Fetched))
	}
	if total.Cached > 0 {
		chart.LabelAndIntValue("Cached", uint64(total.Cached))
	}
	if total.Blocked > 0 {
		chart.LabelAndIntValue("Blocked", uint64(total.Blocked))
	}
	if total.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(total.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary, total model.SourceStats) {
	switch {
	case total.Visited == 0:
		md.Cautionf("No pages were visited. Check source seeds, budgets, and connectivity.")
	case total.Failed > 0 && total.Documents == 0:
		md.Warningf(
			"%d page(s) failed and no documents were cataloged.",
			total.Failed,
		)
	case total.Failed > 0:
		md.Note(fmt.Sprintf(
			"%d page(s) failed; %d document(s) were still cataloged.",
			total.Failed, total.Documents,
		))
	case summary.DryRun:
		md.Note(fmt.Sprintf("Dry run: %d document(s) would have been cataloged.", total.Documents))
	default:
		md.Tip(fmt.Sprintf("%d document(s) cataloged, %d duplicate(s) skipped.", total.Documents, total.Duplicates))
	}
	md.PlainText("")
}

// writeOutcomes writes the catalog outcome section.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Documents")
	md.PlainText("")

	total := summary.Totals()
	label := "Cataloged"
	if summary.DryRun {
		label = "Would catalog"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{label, strconv.Itoa(total.Documents)},
			{"Duplicates skipped", strconv.Itoa(total.Duplicates)},
			{"Pages failed", strconv.Itoa(total.Failed)},
		},
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [finharvest](https://github.com/findexa/finharvest)*")
}

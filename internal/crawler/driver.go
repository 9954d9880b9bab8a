package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/findexa/finharvest/internal/catalog"
	"github.com/findexa/finharvest/internal/config"
	"github.com/findexa/finharvest/internal/extract"
	"github.com/findexa/finharvest/internal/fetch"
	"github.com/findexa/finharvest/internal/frontier"
	"github.com/findexa/finharvest/internal/model"
	"github.com/findexa/finharvest/internal/pipeline"
	"github.com/findexa/finharvest/internal/robots"
)

// Options configures a Driver.
type Options struct {
	// Sources are the compiled sources to harvest, in crawl order.
	Sources []*config.Source

	// Gate answers robots.txt questions. Required.
	Gate *robots.Gate

	// Fetcher retrieves pages. Required.
	Fetcher *fetch.Fetcher

	// Pipeline processes harvested documents. Required.
	Pipeline *pipeline.Pipeline

	// MaxPages caps page visits across all sources. Zero or negative
	// means no global cap; per-source budgets still apply.
	MaxPages int

	// Workers is the number of concurrent page processors. Values below
	// one mean a single worker.
	Workers int

	// DryRun is recorded in the run summary. The commit behavior itself
	// is configured on the pipeline's committer.
	DryRun bool

	// OutputDir is recorded in the run summary.
	OutputDir string

	// Since is recorded in the run summary.
	Since *time.Time

	// Logger records crawl events. Nil means slog.Default().
	Logger *slog.Logger
}

// Driver walks each source breadth-first from its seeds, fetching pages
// through the robots gate and the conditional fetcher, following links
// on HTML pages, and handing document payloads to the pipeline.
//
// Design decision: One dispatcher goroutine feeds a bounded worker pool
// instead of workers pulling from the frontier directly because:
//  1. Only the dispatcher observes the frontier empty, so "no task right
//     now" and "no task ever again" stay distinguishable: the frontier
//     is done only once it is empty with no worker in flight
//  2. Workers never block each other on frontier state; they park in
//     errgroup's limiter instead
//  3. Cancellation lands in one place, between dequeues; tasks already
//     dispatched run to completion
type Driver struct {
	order    []*config.Source
	sources  map[string]*config.Source
	frontier *frontier.Frontier
	gate     *robots.Gate
	fetcher  *fetch.Fetcher
	pipeline *pipeline.Pipeline
	workers  int
	dryRun   bool
	output   string
	since    *time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	stats map[string]*model.SourceStats
}

// New creates a crawl driver over the given sources.
func New(opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	sources := make(map[string]*config.Source, len(opts.Sources))
	stats := make(map[string]*model.SourceStats, len(opts.Sources))
	for _, src := range opts.Sources {
		sources[src.Name] = src
		stats[src.Name] = &model.SourceStats{}
	}

	return &Driver{
		order:    opts.Sources,
		sources:  sources,
		frontier: frontier.New(opts.Sources, opts.MaxPages, logger),
		gate:     opts.Gate,
		fetcher:  opts.Fetcher,
		pipeline: opts.Pipeline,
		workers:  workers,
		dryRun:   opts.DryRun,
		output:   opts.OutputDir,
		since:    opts.Since,
		logger:   logger,
		stats:    stats,
	}
}

// Crawl seeds every source and runs the harvest to completion.
// Per-task failures are counted and logged, never fatal; the returned
// error is non-nil only when the context was cancelled before the
// frontier drained. The summary is valid either way.
func (d *Driver) Crawl(ctx context.Context) (*model.RunSummary, error) {
	started := time.Now()

	for _, src := range d.order {
		d.frontier.Seed(src.Name, src.Seeds)
	}

	d.logger.Info("starting harvest",
		slog.Int("sources", len(d.sources)),
		slog.Int("workers", d.workers),
		slog.Bool("dry_run", d.dryRun))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	// wake holds one pending signal so a worker finishing between the
	// dispatcher's nil dequeue and its receive is never lost.
	var inFlight atomic.Int64
	wake := make(chan struct{}, 1)

	for gctx.Err() == nil {
		task := d.frontier.Next()
		if task == nil {
			if inFlight.Load() == 0 {
				break
			}
			select {
			case <-wake:
			case <-gctx.Done():
			}
			continue
		}

		inFlight.Add(1)
		g.Go(func() error {
			defer func() {
				inFlight.Add(-1)
				select {
				case wake <- struct{}{}:
				default:
				}
			}()
			d.process(gctx, *task)
			return nil
		})
	}

	_ = g.Wait()

	summary := d.summary(started)
	total := summary.Totals()
	d.logger.Info("harvest finished",
		slog.Duration("elapsed", summary.Elapsed()),
		slog.Int("visited", total.Visited),
		slog.Int("documents", total.Documents),
		slog.Int("failed", total.Failed))

	return summary, ctx.Err()
}

// process runs one dequeued task through robots, fetch, and handling.
// Exactly one of the four outcome counters is incremented per task.
func (d *Driver) process(ctx context.Context, task model.Task) {
	source := d.sources[task.Source]
	stats := model.SourceStats{Visited: 1}
	defer func() { d.record(task.Source, stats) }()

	target, err := url.Parse(task.URL)
	if err != nil {
		stats.Failed = 1
		d.logger.Warn("dropping unparseable task",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.Int("depth", task.Depth),
			slog.String("reason", err.Error()))
		return
	}

	if !d.gate.Allowed(ctx, target) {
		stats.Blocked = 1
		d.logger.Info("robots.txt disallows",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.Int("depth", task.Depth))
		return
	}

	result := d.fetcher.Fetch(ctx, task.URL)
	switch result.Status {
	case fetch.StatusNotModified:
		stats.Cached = 1
		d.logger.Debug("content unchanged",
			slog.String("source", task.Source),
			slog.String("url", task.URL))

	case fetch.StatusFresh:
		d.handlePage(ctx, source, task, result.Page, &stats)

	default:
		stats.Failed = 1
		reason := result.Status.String()
		if result.Err != nil {
			reason = result.Err.Error()
		}
		d.logger.Warn("fetch failed",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.Int("depth", task.Depth),
			slog.Int("status_code", result.StatusCode),
			slog.Int("attempts", result.Attempts),
			slog.String("reason", reason))
	}
}

// handlePage routes a fresh payload: HTML pages feed the frontier,
// document payloads feed the pipeline, anything else is only counted.
func (d *Driver) handlePage(ctx context.Context, source *config.Source, task model.Task, page *model.Page, stats *model.SourceStats) {
	stats.Fetched = 1

	if page.IsHTML() {
		d.followLinks(source, task, page)
		return
	}

	fileType := model.FileTypeFromURL(task.URL)
	if !fileType.IsDocument() || !source.CatalogsType(fileType) || !source.AllowsDocument(task.URL) {
		d.logger.Debug("payload not cataloged",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.String("file_type", string(fileType)))
		return
	}

	doc := pipeline.NewDocument(source, task, page)
	if err := d.pipeline.Execute(ctx, doc); err != nil {
		stats.Fetched = 0
		stats.Failed = 1
		d.logger.Warn("document processing failed",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.Int("depth", task.Depth),
			slog.String("reason", err.Error()))
		return
	}

	switch doc.Disposition {
	case catalog.Committed:
		stats.Documents = 1
	case catalog.SkippedDuplicate:
		stats.Duplicates = 1
	}
}

// followLinks extracts a page's links and offers them to the frontier
// one depth level down. Parse problems cost the links, not the task.
func (d *Driver) followLinks(source *config.Source, task model.Task, page *model.Page) {
	parser, err := extract.NewParser(task.URL)
	if err != nil {
		d.logger.Warn("skipping link extraction",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.String("reason", err.Error()))
		return
	}

	body, err := charset.NewReader(bytes.NewReader(page.Raw), page.ContentType)
	if err != nil {
		body = bytes.NewReader(page.Raw)
	}

	parsed, err := parser.Parse(body)
	if err != nil {
		d.logger.Warn("skipping link extraction",
			slog.String("source", task.Source),
			slog.String("url", task.URL),
			slog.String("reason", err.Error()))
		return
	}

	for _, link := range parsed.Links {
		d.frontier.Enqueue(task.Source, link, task.Depth+1)
	}

	d.logger.Debug("followed page",
		slog.String("source", task.Source),
		slog.String("url", task.URL),
		slog.Int("depth", task.Depth),
		slog.Int("links", len(parsed.Links)))
}

// record merges one task's counters into the source's totals.
func (d *Driver) record(source string, s model.SourceStats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if total, ok := d.stats[source]; ok {
		total.Add(s)
	}
}

// summary snapshots the run counters.
func (d *Driver) summary(started time.Time) *model.RunSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	sources := make(map[string]model.SourceStats, len(d.stats))
	for name, s := range d.stats {
		sources[name] = *s
	}

	return &model.RunSummary{
		StartedAt:  started,
		FinishedAt: time.Now(),
		DryRun:     d.dryRun,
		OutputDir:  d.output,
		Since:      d.since,
		Sources:    sources,
	}
}

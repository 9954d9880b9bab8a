package frontier

import (
	"log/slog"
	"sync"

	"github.com/findexa/finharvest/internal/config"
	"github.com/findexa/finharvest/internal/model"
)

// Frontier owns the breadth-first crawl state: one FIFO queue per source,
// the run's visited set, per-source page budgets, and the global page
// budget shared by all sources.
//
// Design decision: URLs enter the visited set at enqueue time, not at
// dequeue time, because:
//  1. Concurrent workers may discover the same link simultaneously; the
//     check-and-insert under one lock guarantees at most one task per URL
//  2. Dropping duplicates before they queue keeps queue memory bounded
//  3. A dequeued task never needs a second visited check
type Frontier struct {
	mu sync.Mutex

	// order preserves registration order for fixed-order source cycling.
	order []string

	sources  map[string]*config.Source
	queues   map[string][]model.Task
	dequeued map[string]int
	visited  map[string]struct{}

	// budget is the number of dequeues the global cap still allows.
	// Negative means no global cap.
	budget int

	// cursor points at the source currently being drained.
	cursor int

	logger *slog.Logger
}

// New creates a frontier over the given sources.
// globalBudget caps dequeues across all sources; zero or negative disables
// the global cap (per-source page budgets still apply). If logger is nil,
// slog.Default() is used.
func New(sources []*config.Source, globalBudget int, logger *slog.Logger) *Frontier {
	if logger == nil {
		logger = slog.Default()
	}
	if globalBudget <= 0 {
		globalBudget = -1
	}

	f := &Frontier{
		sources:  make(map[string]*config.Source, len(sources)),
		queues:   make(map[string][]model.Task, len(sources)),
		dequeued: make(map[string]int, len(sources)),
		visited:  make(map[string]struct{}),
		budget:   globalBudget,
		logger:   logger,
	}
	for _, src := range sources {
		f.order = append(f.order, src.Name)
		f.sources[src.Name] = src
	}

	return f
}

// Seed enqueues a source's seed URLs at depth zero.
func (f *Frontier) Seed(source string, urls []string) {
	for _, u := range urls {
		f.Enqueue(source, u, 0)
	}
}

// Enqueue offers a discovered URL to the frontier.
// The URL is dropped without error when it fails canonicalization, exceeds
// the source's depth limit, falls outside the source's host scope, matches
// a deny expression, was already enqueued this run, or the global budget is
// already spent. Safe for concurrent use.
func (f *Frontier) Enqueue(source, rawURL string, depth int) {
	src, ok := f.sources[source]
	if !ok {
		return
	}

	canon, err := Canonicalize(rawURL)
	if err != nil {
		f.logger.Debug("dropping unusable link", "source", source, "url", rawURL, "error", err)
		return
	}

	if depth > src.MaxDepth {
		return
	}
	if !src.InScope(canon) {
		return
	}
	if src.Denied(canon) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.budget == 0 {
		return
	}
	if _, seen := f.visited[canon]; seen {
		return
	}
	f.visited[canon] = struct{}{}

	f.queues[source] = append(f.queues[source], model.Task{
		URL:    canon,
		Depth:  depth,
		Source: source,
	})
}

// Next returns the next task, draining sources in registration order and
// cycling to the next source when the current one is empty or has hit its
// page budget. Returns nil when no source can yield work or the global
// budget is spent; with concurrent workers still running, nil means "no
// work right now" and becomes terminal once no worker is in flight.
func (f *Frontier) Next() *model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.order) == 0 || f.budget == 0 {
		return nil
	}

	for range f.order {
		name := f.order[f.cursor]
		src := f.sources[name]

		if f.dequeued[name] < src.MaxPages && len(f.queues[name]) > 0 {
			q := f.queues[name]
			task := q[0]
			f.queues[name] = q[1:]
			f.dequeued[name]++
			if f.budget > 0 {
				f.budget--
			}
			return &task
		}

		f.cursor = (f.cursor + 1) % len(f.order)
	}

	return nil
}

// RemainingBudget returns how many dequeues the global budget still allows,
// or -1 when no global cap is configured.
func (f *Frontier) RemainingBudget() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budget
}

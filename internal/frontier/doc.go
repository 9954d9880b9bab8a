// Package frontier schedules the breadth-first crawl.
//
// The Frontier keeps one FIFO queue per source and hands out tasks by
// draining sources in a fixed order, cycling when one runs dry. Three
// guards bound the crawl: a run-scoped visited set with check-and-insert
// semantics (no URL is ever queued twice), per-source depth and page
// budgets, and a global page budget shared across sources. URLs that fail
// any guard are dropped silently; a nil task from Next signals that the
// crawl has nothing left to do.
package frontier

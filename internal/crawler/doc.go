// Package crawler coordinates the harvest: it walks each configured
// source breadth-first from its seeds and turns fetched pages into
// frontier growth or cataloged documents.
//
// # Architecture
//
// The package is built around the Driver type. One dispatcher loop
// dequeues tasks from the frontier and hands them to a bounded pool of
// workers; each worker runs a single task through the robots gate, the
// conditional fetcher, and then either link extraction (HTML pages) or
// the document pipeline (PDF, CSV, and spreadsheet payloads).
//
// # Politeness
//
// Every page request is gated:
//   - robots.txt rules are honored, with a disallowed URL still
//     consuming its source's page budget
//   - at most one request per host is in flight at a time
//   - successive requests to a host are spaced by the larger of the
//     configured delay and the host's Crawl-delay
//   - unchanged content is confirmed with conditional requests instead
//     of re-downloaded
//
// # Failure policy
//
// Per-task failures are counted and logged with their source, URL,
// depth, and reason. No single page can abort a run; only context
// cancellation stops the crawl early, and tasks already dispatched run
// to completion.
package crawler

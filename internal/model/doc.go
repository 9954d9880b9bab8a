// Package model defines the core data structures used throughout finharvest.
//
// This package contains the following main types:
//   - Page: A fetched HTTP response with extracted content
//   - Task: A unit of crawl work queued in the frontier
//   - DocumentRecord: One catalog entry describing a harvested document
//   - RunSummary: Aggregated counters for a completed harvest run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, catalog, report) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for the catalog and for
// report output.
package model

// Package main provides the entry point for the finharvest CLI.
//
// finharvest is a polite, resumable harvester for investor-education and
// regulatory documents published by Indian financial authorities (SEBI,
// NSE, AMFI, RBI, CBDT). It crawls a configured set of sources within
// strict budgets, honors robots.txt, re-uses conditional-request
// validators across runs, and catalogs every harvested document exactly
// once.
//
// Usage:
//
//	finharvest harvest --all
//	finharvest harvest --source sebi,amfi --since 2024-01-01
//
// See --help for all available options.
package main

// main is the entry point for finharvest.
func main() {
	Execute()
}

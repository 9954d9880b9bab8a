// Package catalog persists harvest output: document payloads laid out
// by domain, organization, and year under the output directory, and an
// append-only catalog.jsonl with one record per unique document.
//
// The catalog file is the dedup ledger. Opening it loads every
// identifier written by any previous run against the same output
// directory, and the committer refuses to append an identifier twice.
package catalog

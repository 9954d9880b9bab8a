// Package cache provides SQLite-based storage for HTTP revalidation state.
//
// This package implements the conditional-request cache, which stores per
// URL:
//   - The ETag and Last-Modified validators the server returned
//   - The SHA-256 hash of the last fetched body
//   - The time of the last successful fetch
//
// Later runs read this state to send If-None-Match / If-Modified-Since
// headers, so unchanged pages cost a 304 instead of a full download.
// Entries are never evicted and lookups never touch the network.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the cache is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package cache

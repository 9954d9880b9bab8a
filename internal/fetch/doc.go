// Package fetch performs polite, cache-aware HTTP retrieval.
//
// The Fetcher sends conditional GETs using validators from the cache store,
// classifies every response into a small outcome set (fresh, not modified,
// client error, server error, network error), and retries transient
// failures with capped exponential backoff and jitter. The HostLimiter
// keeps successive request starts against one host spaced by that host's
// politeness delay, independent of backoff sleeps, so retries can never
// hammer a struggling server.
package fetch

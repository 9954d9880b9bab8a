// Package log provides credential-masking logging for the harvester, built
// on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of credential-bearing attributes (cookies, tokens)
//   - URL-aware masking that hides signed query parameters but keeps the
//     rest of the URL legible for debugging
//   - Configurable log levels with verbose mode support
//
// The crawler logs every failure with its URL. Government download portals
// hand out sessioned and signed links, so raw URLs in logs can leak
// short-lived credentials. The RedactingHandler rewrites those query
// parameters before any record reaches the underlying handler.
//
// # Usage
//
//	// Create a masking logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Warn("fetch failed",
//	    "url", "https://portal.example/dl?token=abc123", // token is masked
//	    "reason", "server error",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log

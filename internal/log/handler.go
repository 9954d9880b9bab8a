package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be masked.
// The crawler logs request and response metadata; these keys commonly carry
// credentials that must not end up in shared logs.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"proxy-authorization": true,

	// Authentication
	"password":     true,
	"secret":       true,
	"token":        true,
	"api_key":      true,
	"apikey":       true,
	"api-key":      true,
	"access_token": true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"jsessionid": true,
}

// sensitiveParams contains URL query parameter names whose values are masked
// when a URL is logged. Government download portals hand out signed and
// sessioned links; the URL itself is useful in logs, the credential is not.
var sensitiveParams = map[string]bool{
	"token":        true,
	"key":          true,
	"api_key":      true,
	"apikey":       true,
	"signature":    true,
	"sig":          true,
	"session":      true,
	"sessionid":    true,
	"auth":         true,
	"access_token": true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
}

// MaskValue is the string used to replace sensitive attribute values.
const MaskValue = "***REDACTED***"

// paramMask is the replacement for sensitive URL query parameter values.
// Kept free of characters that query encoding would escape, so masked URLs
// stay readable in logs.
const paramMask = "REDACTED"

// RedactingHandler wraps an slog.Handler to mask credentials in log output.
// It intercepts log records, masks attribute values with sensitive keys, and
// rewrites URL-valued attributes so credential-bearing query parameters are
// masked while the rest of the URL stays legible.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Every package that logs URLs gets masking without knowing about it
type RedactingHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler
}

// NewRedactingHandler creates a new RedactingHandler wrapping the given handler.
// All log attributes are masked before being passed to the underlying handler.
// If handler is nil, the returned RedactingHandler uses slog.Default().Handler().
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it to the underlying handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are masked before being added.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, recursively handling groups.
func (h *RedactingHandler) maskAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	// Check if the key indicates sensitive data
	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Whole-value masking for credential-shaped strings
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}

		// URLs keep their shape with sensitive query parameters masked
		if strings.Contains(strVal, "://") {
			return slog.String(a.Key, MaskURL(strVal))
		}
	}

	return a
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// MaskURL returns the URL with the values of sensitive query parameters
// replaced. URLs that do not parse or carry no sensitive parameters come
// back unchanged. Re-encoding sorts query parameters alphabetically.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}

	q := u.Query()
	masked := false
	for key := range q {
		if sensitiveParams[strings.ToLower(key)] {
			q.Set(key, paramMask)
			masked = true
		}
	}
	if !masked {
		return raw
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// NewLogger creates a new slog.Logger with credential masking.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewRedactingHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with credential masking that
// outputs JSON format. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger configured for JSON output with masking.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewRedactingHandler(jsonHandler))
}

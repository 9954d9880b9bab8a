package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Page represents one fetched HTTP resource: the response envelope plus the
// raw body. HTML pages feed link extraction, document payloads feed the
// catalog pipeline.
//
// Design decision: We keep the raw bytes on the struct rather than streaming
// them because:
// 1. Document payloads are hashed, stored, and parsed for metadata from the same bytes
// 2. The size caps below bound memory per in-flight fetch
// 3. Conditional caching means unchanged resources never reach this struct at all
type Page struct {
	// URL is the canonical URL the response was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	// Keys are header names (canonicalized), values are slices of header values.
	Headers map[string][]string `json:"headers"`

	// ContentType is the MIME type of the response, without parameters.
	// Extracted from the Content-Type header for convenience.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from the <title> tag.
	// Empty for non-HTML content until document metadata extraction runs.
	Title string `json:"title,omitempty"`

	// Raw contains the raw response body bytes.
	// Limited to MaxPageSize for HTML and MaxDocumentSize for documents.
	Raw []byte `json:"-"` // Excluded from JSON to keep reports small

	// Hash is the SHA-256 hash of the raw content.
	// Used for change detection between runs and as the stored checksum.
	Hash string `json:"hash"`

	// FetchedAt records when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// MaxPageSize is the maximum size of an HTML page body to retain.
// Larger pages are truncated to this size.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// MaxDocumentSize is the maximum size of a document payload to retain.
// Consolidated circular compendiums from the regulators run well past the
// page cap, so documents get their own.
const MaxDocumentSize = 32 * 1024 * 1024 // 32 MB

// ComputeHash returns the SHA-256 hash of data as a lowercase hex string.
// Empty input yields an empty string, matching Page.ComputeHash.
func ComputeHash(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
// Header names are case-insensitive in HTTP, but Go's http package
// canonicalizes them, so we store them in canonical form.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// Validators returns the freshness validators the server attached to this
// response. Either may be empty; both empty means the server supports no
// conditional revalidation for this resource.
func (p *Page) Validators() (etag, lastModified string) {
	return p.GetHeader("Etag"), p.GetHeader("Last-Modified")
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		strings.HasPrefix(p.ContentType, "text/html")
}

// FileType derives the payload format from the page URL.
func (p *Page) FileType() FileType {
	return FileTypeFromURL(p.URL)
}

// TruncateRaw ensures the raw content doesn't exceed the given cap.
// Call this after setting Raw to enforce the size limit.
func (p *Page) TruncateRaw(maxSize int) {
	if len(p.Raw) > maxSize {
		p.Raw = p.Raw[:maxSize]
	}
}

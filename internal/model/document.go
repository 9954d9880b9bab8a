package model

import (
	"crypto/sha1" //nolint:gosec // identifier derivation, not a security boundary
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Domain tags a document with the investment domain it belongs to.
// Every registered source declares exactly one domain for the documents it
// yields, and the catalog groups storage paths by it.
type Domain string

// Investment domains recognized by the catalog.
const (
	DomainStockEquity   Domain = "stock_equity"
	DomainMutualFundETF Domain = "mutual_fund_etf"
	DomainRealEstate    Domain = "real_estate"
	DomainFDRD          Domain = "fd_rd"
	DomainRetirement    Domain = "retirement"
	DomainGold          Domain = "gold"
	DomainForex         Domain = "forex"
	DomainLoansCredit   Domain = "loans_credit"
	DomainInsurance     Domain = "insurance"
	DomainTaxation      Domain = "taxation"
)

// Copyright classifies the redistribution status of a harvested document.
type Copyright string

const (
	// CopyrightPublic marks documents from government bodies whose circulars
	// and educational material are public records.
	CopyrightPublic Copyright = "public"
	// CopyrightRestricted marks documents with known redistribution limits.
	CopyrightRestricted Copyright = "restricted"
	// CopyrightUnknown is the default when the publisher is not recognized.
	CopyrightUnknown Copyright = "unknown"
)

// publicRecordOrgs lists source organizations whose publications are treated
// as public records under Indian law.
var publicRecordOrgs = map[string]struct{}{
	"SEBI": {},
	"NSE":  {},
	"AMFI": {},
	"RBI":  {},
	"CBDT": {},
}

// CopyrightForOrg returns the copyright classification for a source
// organization. Unrecognized organizations default to CopyrightUnknown.
func CopyrightForOrg(org string) Copyright {
	if _, ok := publicRecordOrgs[org]; ok {
		return CopyrightPublic
	}
	return CopyrightUnknown
}

// FileType identifies the payload format of a fetched resource.
// It is derived from the URL path extension, not from response headers,
// because the sources serve documents through download endpoints whose
// Content-Type is often a generic octet-stream.
type FileType string

// Payload formats the harvester understands.
const (
	FileTypePDF  FileType = "pdf"
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
	FileTypeHTML FileType = "html"

	// FileTypeUnknown marks URLs without a recognized extension. The crawler
	// treats those as HTML pages since government portals serve most dynamic
	// pages without an extension.
	FileTypeUnknown FileType = ""
)

// FileTypeFromURL derives the payload format from the URL path extension.
func FileTypeFromURL(rawURL string) FileType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FileTypeUnknown
	}

	path := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return FileTypePDF
	case strings.HasSuffix(path, ".csv"):
		return FileTypeCSV
	case strings.HasSuffix(path, ".xlsx"):
		return FileTypeXLSX
	case strings.HasSuffix(path, ".xls"):
		return FileTypeXLS
	case strings.HasSuffix(path, ".html"), strings.HasSuffix(path, ".htm"):
		return FileTypeHTML
	}
	return FileTypeUnknown
}

// IsDocument returns true for payload formats the harvester stores on disk
// and catalogs. HTML pages are crawled for links but never cataloged.
func (f FileType) IsDocument() bool {
	switch f {
	case FileTypePDF, FileTypeCSV, FileTypeXLSX, FileTypeXLS:
		return true
	}
	return false
}

// MaxTopicTags caps the number of topic tags per record. Keyword heuristics
// over regulatory titles match generously; more than five tags stops being
// a classification.
const MaxTopicTags = 5

// QualityFlags records coarse quality signals evaluated at commit time.
type QualityFlags struct {
	// IsOfficial is true when the document came from a host inside the
	// source's allowed domains.
	IsOfficial bool `json:"is_official"`

	// HasMethodology is true when the title suggests the document explains
	// its methodology rather than only publishing figures.
	HasMethodology bool `json:"has_methodology"`

	// Within24Months is true when the publication date falls within 24
	// months of the run. Nil when no publication date could be derived.
	Within24Months *bool `json:"within_24_months"`

	// HasDownloadableFile is true for non-HTML payloads stored on disk.
	HasDownloadableFile bool `json:"has_downloadable_file"`
}

// DocumentRecord is one entry in the harvest catalog. Each record describes
// a single stored document, keyed by an identifier stable across runs.
//
// Design decision: The identifier hashes the URL together with the title
// rather than the content because:
// 1. Content revisions (amended circulars) should update a record, not duplicate it
// 2. The same document reached via different crawl paths keeps one identity
// 3. It can be computed before the payload is written, so dedup happens first
type DocumentRecord struct {
	// ID is the stable document identifier. See NewDocumentID.
	ID string `json:"id"`

	// Title is the human-readable document title, taken from payload
	// metadata when available, else derived from the URL.
	Title string `json:"title"`

	// Summary is an optional short description of the document.
	Summary string `json:"summary,omitempty"`

	// Domain is the investment domain tag inherited from the source.
	Domain Domain `json:"domain"`

	// TopicTags classify the document by keyword heuristics.
	// At most MaxTopicTags entries.
	TopicTags []string `json:"topic_tags"`

	// Jurisdiction is the legal jurisdiction of the publisher.
	Jurisdiction string `json:"jurisdiction"`

	// SourceTier ranks publisher authority. Tier 1 covers the built-in
	// regulators and exchanges.
	SourceTier int `json:"source_tier"`

	// SourceOrg is the publishing organization (SEBI, RBI, ...).
	SourceOrg string `json:"source_org"`

	// SourceURL is the URL the document was fetched from.
	SourceURL string `json:"source_url"`

	// FileType is the stored payload format.
	FileType FileType `json:"file_type"`

	// PublishedAt is the publication date when one could be derived from
	// the payload or the URL. Nil when missing or unparseable; such
	// documents are still cataloged.
	PublishedAt *time.Time `json:"published_at"`

	// LastChecked records when the document was last fetched.
	LastChecked time.Time `json:"last_checked"`

	// VersionOrCircularNo holds the circular or notification number when
	// the title carries one.
	VersionOrCircularNo string `json:"version_or_circular_no,omitempty"`

	// Copyright classifies redistribution status.
	Copyright Copyright `json:"copyright"`

	// Language is the document language as a BCP 47 tag.
	Language string `json:"language"`

	// IntendedAudience describes who the publisher wrote the document for.
	IntendedAudience string `json:"intended_audience"`

	// QualityFlags records coarse quality signals.
	QualityFlags QualityFlags `json:"quality_flags"`

	// StoragePath is the stored payload path relative to the output
	// directory. Empty in dry-run mode.
	StoragePath string `json:"storage_path,omitempty"`

	// ChecksumSHA256 is the SHA-256 hash of the stored payload.
	ChecksumSHA256 string `json:"checksum_sha256"` //nolint:tagliatelle // SHA256 is standard acronym
}

// NewDocumentID computes the stable document identifier from the source URL
// and title. Both inputs participate so that one URL serving retitled content
// over time yields distinct records, while the same URL/title pairing reached
// through different crawl paths collapses to one.
func NewDocumentID(sourceURL, title string) string {
	sum := sha1.Sum([]byte(sourceURL + "|" + title)) //nolint:gosec // identifier derivation, not a security boundary
	return hex.EncodeToString(sum[:])
}

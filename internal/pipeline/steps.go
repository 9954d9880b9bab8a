package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/findexa/finharvest/internal/catalog"
	"github.com/findexa/finharvest/internal/extract"
	"github.com/findexa/finharvest/internal/model"
)

// Record defaults for documents from the built-in Indian regulators.
// YAML-defined sources inherit them until the source schema grows its
// own fields for these.
const (
	defaultJurisdiction = "IN"
	defaultSourceTier   = 1
	defaultLanguage     = "en"
	defaultAudience     = "education"
)

// MetadataStep builds the initial catalog record: title, publication
// date, and circular number, from payload metadata where the format
// carries any and from the URL otherwise.
type MetadataStep struct{}

// NewMetadataStep creates the metadata extraction step.
func NewMetadataStep() *MetadataStep {
	return &MetadataStep{}
}

// Name returns the step name.
func (s *MetadataStep) Name() string {
	return "metadata"
}

// Do derives document metadata.
//
// Title precedence follows what the payload can support: PDF info
// dictionary first, then the last URL path segment. Dates prefer the
// payload over the URL for the same reason.
func (s *MetadataStep) Do(ctx context.Context, doc *Document) error {
	task := doc.Task

	fileType := model.FileTypeFromURL(task.URL)

	var (
		title     string
		published *time.Time
		circular  string
	)

	if fileType == model.FileTypePDF && extract.IsPDF(doc.Page.Raw) {
		title, published = extract.PDFMetadata(doc.Page.Raw)
		if title != "" {
			circular = extract.CircularNumber(title)
		}
	}

	if title == "" {
		title = urlTitle(task.URL)
	}
	if published == nil {
		published = extract.DateFromURL(task.URL)
	}

	doc.Record = &model.DocumentRecord{
		ID:                  model.NewDocumentID(task.URL, title),
		Title:               title,
		Domain:              doc.Source.Domain,
		SourceOrg:           doc.Source.Org,
		SourceURL:           task.URL,
		FileType:            fileType,
		PublishedAt:         published,
		LastChecked:         doc.Page.FetchedAt,
		VersionOrCircularNo: circular,
	}

	return nil
}

// urlTitle falls back to the last URL path segment as a title.
func urlTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if last := segments[len(segments)-1]; last != "" {
			return last
		}
	}
	return "Document"
}

// ClassifyStep fills in the classification fields: topic tags,
// copyright status, quality flags, and the publisher defaults.
type ClassifyStep struct{}

// NewClassifyStep creates the classification step.
func NewClassifyStep() *ClassifyStep {
	return &ClassifyStep{}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do classifies the document built by the metadata step.
func (s *ClassifyStep) Do(ctx context.Context, doc *Document) error {
	record := doc.Record
	if record == nil {
		return fmt.Errorf("classify: no record to classify")
	}

	record.TopicTags = extract.TopicTags(record.Title, "")
	record.Copyright = model.CopyrightForOrg(record.SourceOrg)
	record.Jurisdiction = defaultJurisdiction
	record.SourceTier = defaultSourceTier
	record.Language = defaultLanguage
	record.IntendedAudience = defaultAudience

	var within *bool
	if record.PublishedAt != nil {
		w := record.PublishedAt.After(time.Now().AddDate(-2, 0, 0))
		within = &w
	}

	record.QualityFlags = model.QualityFlags{
		IsOfficial:          doc.Source.InScope(record.SourceURL),
		HasMethodology:      strings.Contains(strings.ToLower(record.Title), "methodology"),
		Within24Months:      within,
		HasDownloadableFile: record.FileType.IsDocument(),
	}

	return nil
}

// CommitStep hands the finished record to the catalog committer.
type CommitStep struct {
	committer *catalog.Committer
}

// NewCommitStep creates the commit step writing through committer.
func NewCommitStep(committer *catalog.Committer) *CommitStep {
	return &CommitStep{committer: committer}
}

// Name returns the step name.
func (s *CommitStep) Name() string {
	return "commit"
}

// Do commits the document and records the disposition.
func (s *CommitStep) Do(ctx context.Context, doc *Document) error {
	if doc.Record == nil {
		return fmt.Errorf("commit: no record to commit")
	}

	disposition, err := s.committer.Commit(doc.Record, doc.Page.Raw)
	if err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	doc.Disposition = disposition
	return nil
}

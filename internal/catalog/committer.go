package catalog

import (
	"log/slog"
	"time"

	"github.com/findexa/finharvest/internal/model"
)

// Disposition is the outcome of a single commit attempt.
type Disposition int

const (
	// DispositionNone is the zero value. Commit never returns it, so a
	// document that never reached Commit is distinguishable from one
	// that was committed.
	DispositionNone Disposition = iota
	// Committed means the document was accepted and, outside dry runs,
	// stored and cataloged.
	Committed
	// SkippedDuplicate means the document identifier is already cataloged,
	// in this run or a previous one.
	SkippedDuplicate
	// SkippedOld means the publication date falls before the since cutoff.
	SkippedOld
)

// String returns the disposition name.
func (d Disposition) String() string {
	switch d {
	case Committed:
		return "committed"
	case SkippedDuplicate:
		return "skipped_duplicate"
	case SkippedOld:
		return "skipped_old"
	default:
		return "unknown"
	}
}

// Options configures a Committer.
type Options struct {
	// Since drops documents published before this date. Documents
	// without a derivable publication date always pass the cutoff;
	// an unknown date is not evidence the document is old.
	Since *time.Time

	// DryRun runs the full dedup and classification path but writes
	// neither payload files nor catalog lines.
	DryRun bool

	Logger *slog.Logger
}

// Committer turns candidate documents into catalog entries. Each
// identifier is reserved before any file is written, so a document
// reached twice, concurrently or across runs, yields exactly one
// payload file and one catalog line.
type Committer struct {
	catalog *Catalog
	storage *Storage
	since   *time.Time
	dryRun  bool
	logger  *slog.Logger
}

// NewCommitter creates a Committer writing through cat and storage.
func NewCommitter(cat *Catalog, storage *Storage, opts Options) *Committer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Committer{
		catalog: cat,
		storage: storage,
		since:   opts.Since,
		dryRun:  opts.DryRun,
		logger:  logger,
	}
}

// Commit stores a document payload and appends its record to the
// catalog. The record's checksum and storage path are filled in here;
// everything else must be set by the caller.
func (c *Committer) Commit(record *model.DocumentRecord, content []byte) (Disposition, error) {
	if c.since != nil && record.PublishedAt != nil && record.PublishedAt.Before(*c.since) {
		c.logger.Debug("skipping document older than cutoff",
			slog.String("url", record.SourceURL),
			slog.Time("published_at", *record.PublishedAt))
		return SkippedOld, nil
	}

	if !c.catalog.Remember(record) {
		c.logger.Debug("skipping already cataloged document",
			slog.String("url", record.SourceURL),
			slog.String("id", record.ID))
		return SkippedDuplicate, nil
	}

	record.ChecksumSHA256 = model.ComputeHash(content)

	if c.dryRun {
		c.logger.Info("dry run, would store document",
			slog.String("url", record.SourceURL),
			slog.String("path", StoragePath(record)))
		return Committed, nil
	}

	relPath := StoragePath(record)
	record.StoragePath = relPath

	written, err := c.storage.Write(relPath, content)
	if err != nil {
		return Committed, err
	}

	if err := c.catalog.Append(record); err != nil {
		return Committed, err
	}

	if written {
		c.logger.Info("stored document",
			slog.String("url", record.SourceURL),
			slog.String("path", relPath))
	} else {
		c.logger.Debug("payload already on disk, cataloged without rewrite",
			slog.String("path", relPath))
	}

	return Committed, nil
}

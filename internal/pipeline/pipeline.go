package pipeline

import (
	"context"
	"log/slog"

	"github.com/findexa/finharvest/internal/catalog"
	"github.com/findexa/finharvest/internal/config"
	"github.com/findexa/finharvest/internal/model"
)

// Document is the unit of work flowing through the pipeline: a fetched
// payload on its way to becoming a catalog entry. Steps fill it in as
// they run.
type Document struct {
	// Source is the source definition the document was harvested under.
	Source *config.Source

	// Task is the frontier task that produced the payload.
	Task model.Task

	// Page is the fetched payload with headers and body.
	Page *model.Page

	// Record is the catalog record under construction. Nil until the
	// metadata step runs.
	Record *model.DocumentRecord

	// Disposition is the commit outcome. Valid after the commit step.
	Disposition catalog.Disposition

	// Err holds the last step error when the pipeline is configured to
	// continue past failures.
	Err error
}

// NewDocument wraps a fetched payload for processing.
func NewDocument(source *config.Source, task model.Task, page *model.Page) *Document {
	return &Document{
		Source: source,
		Task:   task,
		Page:   page,
	}
}

// Step is one stage of document processing. Steps run in sequence,
// each receiving the document as modified by its predecessors.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., per-type steps)
type Step interface {
	// Do executes the step. Returning an error fails the document;
	// recoverable conditions (a missing date, an unparseable title)
	// should degrade inside the step instead.
	Do(ctx context.Context, doc *Document) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs a fixed sequence of steps over each document.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError determines whether to keep running steps after
	// one fails. The default stops on first error: a document that
	// failed metadata extraction has nothing for later steps to work on.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run remaining steps
// after one fails. The failure is kept in Document.Err.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline. Add stages with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps over the document in sequence. Cancellation
// is checked between steps; a running step finishes first.
func (p *Pipeline) Execute(ctx context.Context, doc *Document) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("document pipeline cancelled",
				slog.String("step", step.Name()),
				slog.String("url", doc.Task.URL))
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			slog.String("step", step.Name()),
			slog.String("url", doc.Task.URL))

		if err := step.Do(ctx, doc); err != nil {
			p.logger.Error("step failed",
				slog.String("step", step.Name()),
				slog.String("url", doc.Task.URL),
				slog.Any("error", err))

			doc.Err = err
			if !p.continueOnError {
				return err
			}
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

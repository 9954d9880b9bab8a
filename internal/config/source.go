package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/findexa/finharvest/internal/model"
)

// Source describes one harvest target: an organization's portal with seed
// URLs, link filters, and crawl budgets. Sources come from the built-in
// registry or from a sources file, and every crawl task carries the name of
// the source it belongs to.
type Source struct {
	// Name is the registry key for this source (e.g., "sebi").
	Name string `yaml:"name"`

	// Domain is the investment domain tag stamped on every document this
	// source yields.
	Domain model.Domain `yaml:"domain"`

	// Org is the publishing organization (e.g., "SEBI").
	Org string `yaml:"org"`

	// Seeds are the URLs the crawl starts from, at depth 0.
	// The source's host scope is derived from these.
	Seeds []string `yaml:"seeds"`

	// Allow are regular expressions a document URL must match (any of)
	// before it is cataloged. Empty means all in-scope documents qualify.
	// HTML pages are not subject to allow filtering; they are crawled for
	// links whenever they are in scope.
	Allow []string `yaml:"allow,omitempty"`

	// Deny are regular expressions that exclude URLs from the crawl
	// entirely. Checked at enqueue time against the full URL.
	Deny []string `yaml:"deny,omitempty"`

	// MaxDepth overrides the default link depth for this source.
	// If zero, DefaultMaxDepth is used.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// MaxPages overrides the default page budget for this source.
	// If zero, DefaultMaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// FileTypes restricts which document formats this source catalogs.
	// Empty means all of pdf, csv, xlsx, xls.
	FileTypes []string `yaml:"fileTypes,omitempty"`

	// Compiled state, populated by Compile.
	allowRe []*regexp.Regexp
	denyRe  []*regexp.Regexp
	hosts   map[string]struct{}
}

// Compile validates the source and prepares its derived state: compiled
// allow/deny expressions and the host scope derived from the seeds.
// Must be called once before any of the matching methods.
func (s *Source) Compile() error {
	if s.Name == "" {
		return ErrSourceName
	}
	if len(s.Seeds) == 0 {
		return fmt.Errorf("%w: %s", ErrSourceSeeds, s.Name)
	}

	if s.MaxDepth == 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	if s.MaxPages == 0 {
		s.MaxPages = DefaultMaxPages
	}

	s.hosts = make(map[string]struct{}, len(s.Seeds))
	for _, seed := range s.Seeds {
		u, err := url.Parse(seed)
		if err != nil {
			return fmt.Errorf("source %s: seed %q: %w", s.Name, seed, err)
		}
		if u.Hostname() == "" {
			return fmt.Errorf("%w: %s: seed %q has no host", ErrSourceSeeds, s.Name, seed)
		}
		s.hosts[bareHost(u.Hostname())] = struct{}{}
	}

	s.allowRe = make([]*regexp.Regexp, 0, len(s.Allow))
	for _, pattern := range s.Allow {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%w: %s: allow %q: %v", ErrSourcePattern, s.Name, pattern, err)
		}
		s.allowRe = append(s.allowRe, re)
	}

	s.denyRe = make([]*regexp.Regexp, 0, len(s.Deny))
	for _, pattern := range s.Deny {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%w: %s: deny %q: %v", ErrSourcePattern, s.Name, pattern, err)
		}
		s.denyRe = append(s.denyRe, re)
	}

	return nil
}

// bareHost strips a leading "www." so that www.sebi.gov.in and sebi.gov.in
// fall in the same scope. The regulators serve documents from both forms.
func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// InScope reports whether a URL's host belongs to this source.
// Off-scope URLs are dropped silently at enqueue time.
func (s *Source) InScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, ok := s.hosts[bareHost(u.Hostname())]
	return ok
}

// Denied reports whether a URL matches any deny expression.
func (s *Source) Denied(rawURL string) bool {
	for _, re := range s.denyRe {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// AllowsDocument reports whether a document URL passes the allow filter.
// With no allow expressions configured, every in-scope document passes.
func (s *Source) AllowsDocument(rawURL string) bool {
	if len(s.allowRe) == 0 {
		return true
	}
	for _, re := range s.allowRe {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// CatalogsType reports whether this source catalogs the given payload format.
func (s *Source) CatalogsType(ft model.FileType) bool {
	if !ft.IsDocument() {
		return false
	}
	if len(s.FileTypes) == 0 {
		return true
	}
	for _, t := range s.FileTypes {
		if model.FileType(t) == ft {
			return true
		}
	}
	return false
}

// SourceDefaults holds budget defaults a sources file can apply to all of
// its sources unless a source overrides them.
type SourceDefaults struct {
	// MaxDepth is the default link depth for sources without their own.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// MaxPages is the default page budget for sources without their own.
	MaxPages int `yaml:"maxPages,omitempty"`

	// FileTypes is the default catalog format restriction.
	FileTypes []string `yaml:"fileTypes,omitempty"`
}

// SourcesFile represents the structure of a finharvest sources file.
type SourcesFile struct {
	// Sources lists the harvest targets defined by this file.
	Sources []Source `yaml:"sources"`

	// Defaults contains budget defaults applied to all sources unless
	// overridden in the source-specific configuration.
	Defaults SourceDefaults `yaml:"defaults,omitempty"`
}

// Merged returns the file's sources with defaults applied.
// A source-level value always wins over the file default.
func (f *SourcesFile) Merged() []Source {
	merged := make([]Source, len(f.Sources))
	for i, src := range f.Sources {
		if src.MaxDepth == 0 {
			src.MaxDepth = f.Defaults.MaxDepth
		}
		if src.MaxPages == 0 {
			src.MaxPages = f.Defaults.MaxPages
		}
		if len(src.FileTypes) == 0 {
			src.FileTypes = f.Defaults.FileTypes
		}
		merged[i] = src
	}
	return merged
}

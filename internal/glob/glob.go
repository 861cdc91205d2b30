// Package glob finds files under a base path that match include/exclude glob
// patterns, either eagerly or as a cancellable stream.
package glob

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/matcher"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/scanner"
	"github.com/spf13/afero"
)

// sharedCache is used by every Glob that was not given its own cache
var sharedCache = sync.OnceValue(func() *matcher.Cache {
	cache, err := matcher.NewCache(matcher.DefaultCapacity, nil)
	if err != nil {
		panic(err)
	}
	return cache
})

// SharedCache returns the process-wide matcher cache
func SharedCache() *matcher.Cache {
	return sharedCache()
}

// Glob runs queries rooted at one base path. A Glob holds no per-query state
// and may be used from several goroutines at once.
type Glob struct {
	basePath           string
	fs                 afero.Fs
	cache              *matcher.Cache
	caseInsensitive    bool
	ignoreInaccessible bool
	maxDepth           int
	logger             *log.Logger
}

// Option configures a Glob
type Option func(*Glob)

// WithFs sets the filesystem to search. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(g *Glob) {
		if fs != nil {
			g.fs = fs
		}
	}
}

// WithCache sets the matcher cache. Defaults to SharedCache.
func WithCache(cache *matcher.Cache) Option {
	return func(g *Glob) {
		if cache != nil {
			g.cache = cache
		}
	}
}

// WithCaseInsensitive sets the case mode of both matching and root resolution
func WithCaseInsensitive(caseInsensitive bool) Option {
	return func(g *Glob) {
		g.caseInsensitive = caseInsensitive
	}
}

// WithIgnoreInaccessible controls whether unreadable or vanished entries are
// skipped (the default) or fail the query
func WithIgnoreInaccessible(ignore bool) Option {
	return func(g *Glob) {
		g.ignoreInaccessible = ignore
	}
}

// WithMaxDepth limits how many directory levels below the base path are
// searched. Negative means unlimited.
func WithMaxDepth(depth int) Option {
	return func(g *Glob) {
		g.maxDepth = depth
	}
}

// WithLogger sets the logger for query lifecycle events
func WithLogger(logger *log.Logger) Option {
	return func(g *Glob) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Glob rooted at basePath
func New(basePath string, opts ...Option) (*Glob, error) {
	if basePath == "" {
		return nil, errors.NewInvalidArgument("basePath", "")
	}

	g := &Glob{
		basePath:           basePath,
		fs:                 afero.NewOsFs(),
		caseInsensitive:    models.DefaultCaseInsensitive,
		ignoreInaccessible: true,
		maxDepth:           scanner.UnlimitedDepth,
		logger:             log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cache == nil {
		g.cache = SharedCache()
	}

	return g, nil
}

// BasePath returns the root every query searches
func (g *Glob) BasePath() string {
	return g.basePath
}

// CaseInsensitive reports the case mode
func (g *Glob) CaseInsensitive() bool {
	return g.caseInsensitive
}

// Config builds the PatternConfig a query with these patterns would run. A
// nil patterns slice is an absent argument; nil ignorePatterns means none.
func (g *Glob) Config(patterns, ignorePatterns []string) (models.PatternConfig, error) {
	if patterns == nil {
		return models.PatternConfig{}, errors.NewInvalidArgument("patterns", "")
	}

	builder := models.NewPatternConfigBuilder().
		WithBasePath(g.basePath).
		WithCaseInsensitive(g.caseInsensitive).
		WithPatterns(patterns...)
	if ignorePatterns != nil {
		builder = builder.WithIgnorePatterns(ignorePatterns...)
	}

	return builder.Build()
}

// Matches returns the full path of every match
func (g *Glob) Matches(patterns, ignorePatterns []string) ([]string, error) {
	set, err := g.MatchResults(patterns, ignorePatterns)
	if err != nil {
		return nil, err
	}
	return set.FullPaths(), nil
}

// MatchResults returns every match together with its stem
func (g *Glob) MatchResults(patterns, ignorePatterns []string) (*models.MatchSet, error) {
	cfg, err := g.Config(patterns, ignorePatterns)
	if err != nil {
		return nil, err
	}
	return g.Evaluate(cfg)
}

// Evaluate runs cfg to completion and lets the compiled matcher walk the tree.
// The configuration's base path and case mode take precedence over the Glob's.
func (g *Glob) Evaluate(cfg models.PatternConfig) (*models.MatchSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := g.cache.GetOrCompile(cfg)
	if err != nil {
		return nil, err
	}

	root, err := g.treeScanner(cfg).ResolveRoot(cfg.BasePath())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := m.EnumerateUnder(g.fs, root, matcher.EnumerateOptions{
		IgnoreInaccessible: g.ignoreInaccessible,
		MaxDepth:           g.maxDepth,
	})
	if err != nil {
		return nil, err
	}

	set := models.NewMatchSet(root)
	for _, r := range results {
		set.Add(r)
	}
	set.CollectedAt = time.Now()

	g.logger.Debug("evaluated query", "config", cfg.String(), "matches", set.Len(), "took", time.Since(start))
	return set, nil
}

func (g *Glob) treeScanner(cfg models.PatternConfig) *scanner.TreeScanner {
	ts := scanner.NewTreeScanner(g.fs)
	ts.SetCaseInsensitive(cfg.CaseInsensitive())
	ts.SetIgnoreInaccessible(g.ignoreInaccessible)
	ts.SetMaxDepth(g.maxDepth)
	ts.SetLogger(g.logger)
	return ts
}

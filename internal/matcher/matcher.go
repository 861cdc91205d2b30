// Package matcher compiles include/exclude glob pattern sets into reusable
// matchers and caches them per pattern configuration.
package matcher

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/spf13/afero"
)

// Matcher is a compiled pattern set. Implementations are immutable and safe
// for concurrent use. Paths are slash-separated and relative to the search root.
type Matcher interface {
	// Test reports whether rel is included and not excluded
	Test(rel string) bool
	// Match is Test that also reports the stem of the match
	Match(rel string) (models.MatchResult, bool)
	// SkipDir reports whether nothing under the directory rel can match
	SkipDir(rel string) bool
	// EnumerateUnder walks root itself and returns every match
	EnumerateUnder(fsys afero.Fs, root string, opts EnumerateOptions) ([]models.MatchResult, error)
}

// EnumerateOptions controls EnumerateUnder
type EnumerateOptions struct {
	IgnoreInaccessible bool
	MaxDepth           int // negative for unlimited
}

// Compiler turns pattern sets into matchers
type Compiler interface {
	Compile(inclusions, exclusions []string, caseInsensitive bool) (Matcher, error)
}

// CompilerFunc adapts a function to the Compiler interface
type CompilerFunc func(inclusions, exclusions []string, caseInsensitive bool) (Matcher, error)

// Compile implements Compiler
func (f CompilerFunc) Compile(inclusions, exclusions []string, caseInsensitive bool) (Matcher, error) {
	return f(inclusions, exclusions, caseInsensitive)
}

// DefaultCompiler compiles doublestar patterns
var DefaultCompiler Compiler = CompilerFunc(Compile)

type includePattern struct {
	pattern string
	base    string // literal directory prefix, empty when the pattern starts with a meta character
}

type globMatcher struct {
	includes        []includePattern
	excludes        []string
	caseInsensitive bool
}

// Compile builds a doublestar matcher. Exclusions apply to a path and all of
// its ancestors, so excluding "vendor" drops everything below vendor/. With no
// inclusions every path not excluded matches.
func Compile(inclusions, exclusions []string, caseInsensitive bool) (Matcher, error) {
	m := &globMatcher{caseInsensitive: caseInsensitive}

	for _, raw := range inclusions {
		p, err := normalizePattern(raw, caseInsensitive)
		if err != nil {
			return nil, err
		}
		base, _ := doublestar.SplitPattern(p)
		if base == "." {
			base = ""
		}
		m.includes = append(m.includes, includePattern{pattern: p, base: base})
	}

	for _, raw := range exclusions {
		p, err := normalizePattern(raw, caseInsensitive)
		if err != nil {
			return nil, err
		}
		m.excludes = append(m.excludes, p)
	}

	return m, nil
}

func normalizePattern(raw string, caseInsensitive bool) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.NewValidation("pattern is empty or whitespace")
	}

	p := filepath.ToSlash(raw)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if caseInsensitive {
		p = strings.ToLower(p)
	}

	if p == "" || !doublestar.ValidatePattern(p) {
		return "", errors.NewValidation("invalid glob pattern %q", raw)
	}
	return p, nil
}

func (m *globMatcher) fold(rel string) string {
	if m.caseInsensitive {
		return strings.ToLower(rel)
	}
	return rel
}

func (m *globMatcher) Test(rel string) bool {
	_, ok := m.match(rel)
	return ok
}

func (m *globMatcher) Match(rel string) (models.MatchResult, bool) {
	stem, ok := m.match(rel)
	if !ok {
		return models.MatchResult{}, false
	}
	return models.MatchResult{Path: rel, Stem: stem}, true
}

func (m *globMatcher) match(rel string) (string, bool) {
	folded := m.fold(rel)
	if m.excluded(folded) {
		return "", false
	}

	if len(m.includes) == 0 {
		return rel, true
	}

	for _, inc := range m.includes {
		if doublestar.MatchUnvalidated(inc.pattern, folded) {
			return stemOf(rel, folded, inc.base), true
		}
	}
	return "", false
}

// stemOf strips the literal prefix. The prefix is found in the folded path;
// folding maps rune to rune, so it is cut from rel by rune count, which keeps
// rel's own case even when folding changed byte lengths.
func stemOf(rel, folded, base string) string {
	if base == "" || !strings.HasPrefix(folded, base+"/") {
		return rel
	}
	if len(folded) == len(rel) {
		return rel[len(base)+1:]
	}

	skip := utf8.RuneCountInString(base) + 1
	for i := range rel {
		if skip == 0 {
			return rel[i:]
		}
		skip--
	}
	return ""
}

func (m *globMatcher) SkipDir(rel string) bool {
	return m.excludedExact(m.fold(rel))
}

// excluded checks the path and every ancestor directory
func (m *globMatcher) excluded(folded string) bool {
	if len(m.excludes) == 0 {
		return false
	}
	for i := 0; i < len(folded); i++ {
		if folded[i] == '/' && m.excludedExact(folded[:i]) {
			return true
		}
	}
	return m.excludedExact(folded)
}

func (m *globMatcher) excludedExact(folded string) bool {
	for _, ex := range m.excludes {
		if doublestar.MatchUnvalidated(ex, folded) {
			return true
		}
	}
	return false
}

// EnumerateUnder walks root with afero.Walk and collects matches in walk order
func (m *globMatcher) EnumerateUnder(fsys afero.Fs, root string, opts EnumerateOptions) ([]models.MatchResult, error) {
	var results []models.MatchResult
	root = filepath.Clean(root)

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path != root && opts.IgnoreInaccessible && isInaccessible(err) {
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return errors.NewEnumeration(path, err)
		}

		if path == root {
			if !info.IsDir() {
				return errors.NewEnumeration(path, stderrors.New("not a directory"))
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return errors.WithStackTrace(err)
		}
		rel := filepath.ToSlash(relPath)

		if info.IsDir() {
			if opts.MaxDepth >= 0 && strings.Count(rel, "/")+1 > opts.MaxDepth {
				return filepath.SkipDir
			}
			if m.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if match, ok := m.Match(rel); ok {
			results = append(results, match)
		}
		return nil
	})
	if err != nil {
		return results, err
	}

	return results, nil
}

func isInaccessible(err error) bool {
	return stderrors.Is(err, fs.ErrPermission) || stderrors.Is(err, fs.ErrNotExist)
}

package models

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Root is a plain base path usable wherever a BasePather is expected
type Root string

// BasePath implements BasePather
func (r Root) BasePath() string {
	return string(r)
}

// MatchResult is a single match as produced by a matcher
type MatchResult struct {
	Path string `json:"path"`           // Slash-separated path relative to the search root
	Stem string `json:"stem,omitempty"` // Part of Path below the pattern's literal prefix, empty if unknown
}

// ResolvedPath is a match joined with the base path it was found under
type ResolvedPath struct {
	FullPath string      `json:"full_path"`
	Match    MatchResult `json:"match"`
}

// HasStem reports whether the matcher supplied a stem
func (m MatchResult) HasStem() bool {
	return m.Stem != ""
}

// ResolvePath joins base with the match path. The stem is never used.
func (m MatchResult) ResolvePath(base string) string {
	return filepath.Join(base, filepath.FromSlash(m.Path))
}

// Resolve produces a filesystem-resolvable descriptor for the match
func (m MatchResult) Resolve(base BasePather) ResolvedPath {
	return ResolvedPath{
		FullPath: m.ResolvePath(base.BasePath()),
		Match:    m,
	}
}

// Stat returns file information for the resolved path
func (r ResolvedPath) Stat(fs afero.Fs) (os.FileInfo, error) {
	return fs.Stat(r.FullPath)
}

// String returns the full path
func (r ResolvedPath) String() string {
	return r.FullPath
}
